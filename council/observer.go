package council

// Observer is notified after each stage settles, for live progress
// display. It has no influence on orchestration outcome.
//
// Methods are invoked synchronously on the orchestrating goroutine,
// immediately after the stage's join barrier, with snapshots the observer
// may retain. Because invocation is synchronous, a panicking observer
// takes the run down with it; observers should not do fallible work.
type Observer interface {
	// Stage1Complete receives every Stage-1 outcome in council order.
	Stage1Complete(results []Stage1Result)

	// Stage2Complete receives all ranking submissions and the aggregate
	// computed from the valid ones.
	Stage2Complete(submissions []RankingSubmission, aggregate []AggregateRanking)

	// Stage3Complete receives the chairman's synthesis.
	Stage3Complete(result Stage3Result)
}

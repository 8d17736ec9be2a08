package council

// Stage1Result is the settled outcome of one Stage-1 call. Exactly one
// exists per requested council model, in council-list order.
type Stage1Result struct {
	Model     string `json:"model"`
	Response  string `json:"response,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	Failed    bool   `json:"failed,omitempty"`
}

// RankingSubmission is one reviewer's Stage-2 output. Parsed holds the
// reviewer's complete best-to-worst label ordering; it is nil when the raw
// text could not be resolved into one, and such submissions are excluded
// from aggregation.
type RankingSubmission struct {
	Model  string   `json:"model"`
	Raw    string   `json:"ranking"`
	Parsed []string `json:"parsed_ranking,omitempty"`
}

// Valid reports whether the submission parsed into a complete ordering.
func (s RankingSubmission) Valid() bool {
	return len(s.Parsed) > 0
}

// AggregateRanking is the averaged peer-assigned rank for one model.
// AverageRank is the mean of the model's 1-indexed positions across the
// valid submissions that name it; lower is better.
type AggregateRanking struct {
	Model       string  `json:"model"`
	AverageRank float64 `json:"average_rank"`
	Rankings    int     `json:"rankings_count"`
}

// Stage3Result is the chairman's synthesis.
type Stage3Result struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// Result is the full output bundle of one deliberation run. It is handed
// verbatim to formatters; the council never renders for display.
//
// When synthesis fails, Deliberate returns a Result with Stage3 nil
// alongside ErrSynthesisFailed so Stage-1/Stage-2 data stays available
// for diagnostics.
type Result struct {
	Query             string             `json:"query"`
	Stage1            []Stage1Result     `json:"stage1"`
	Stage2            []RankingSubmission `json:"stage2"`
	AggregateRankings []AggregateRanking `json:"aggregate_rankings"`
	Stage3            *Stage3Result      `json:"stage3,omitempty"`

	// LabelToModel records the anonymization mapping used during peer
	// review, for transparency and auditing.
	LabelToModel map[string]string `json:"label_to_model"`

	// Responded and Requested count Stage-1 participation; transient
	// call failures surface here rather than as errors.
	Responded int `json:"responded"`
	Requested int `json:"requested"`
}

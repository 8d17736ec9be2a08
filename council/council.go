package council

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/council-go/council/emit"
	"github.com/dshills/council-go/council/model"
)

// Council orchestrates one or more deliberation runs over a fixed lineup
// of council models and a chairman.
//
// A run is three strictly sequential stages; within a stage, calls are
// concurrent. No stage dispatches before its predecessor has fully
// settled: the Stage-2 prompt needs every Stage-1 outcome, and the
// chairman needs both.
//
// Example:
//
//	client, _ := openrouter.New(apiKey)
//	c, _ := council.New(client,
//	    []string{"openai/gpt-5.2-pro", "anthropic/claude-opus-4.6"},
//	    "anthropic/claude-opus-4.6")
//	result, err := c.Deliberate(ctx, "What is the meaning of life?")
type Council struct {
	client   model.Client
	models   []string
	chairman string

	observer Observer
	emitter  emit.Emitter
	metrics  *Metrics

	runID   string
	seed    int64
	seedSet bool
}

// New creates a Council. The council model list must be non-empty and the
// chairman must be named; the chairman may also sit on the council.
func New(client model.Client, councilModels []string, chairman string, opts ...Option) (*Council, error) {
	if client == nil {
		return nil, errors.New("council: client is required")
	}
	if len(councilModels) == 0 {
		return nil, errors.New("council: at least one council model is required")
	}
	if chairman == "" {
		return nil, errors.New("council: chairman model is required")
	}

	c := &Council{
		client:   client,
		models:   append([]string(nil), councilModels...),
		chairman: chairman,
		emitter:  emit.NewNullEmitter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Deliberate runs the full pipeline for one query.
//
// Transient per-call failures are recorded in the Result and never abort
// a stage. Two conditions are fatal: ErrNoResponses when every Stage-1
// call fails (nothing to deliberate over), and ErrSynthesisFailed when
// the chairman call fails — the latter still returns the Result holding
// all Stage-1/Stage-2 data. Context cancellation returns ctx.Err() and no
// Result.
func (c *Council) Deliberate(ctx context.Context, query string) (*Result, error) {
	runID := c.runID
	if runID == "" {
		runID = newRunID()
	}
	seed := c.seed
	if !c.seedSet {
		seed = newSeed()
	}

	c.emitter.Emit(emit.Event{RunID: runID, Msg: emit.MsgRunStart, Meta: map[string]interface{}{
		"council":  len(c.models),
		"chairman": c.chairman,
	}})

	// Stage 1: collect individual responses.
	stage1, successModels, responses, err := c.runStage1(ctx, runID, query)
	if err != nil {
		c.finishRun(runID, err)
		return nil, err
	}
	if c.observer != nil {
		c.observer.Stage1Complete(append([]Stage1Result(nil), stage1...))
	}

	assignment := assignLabels(successModels, seed)

	// Stage 2: anonymous peer review.
	submissions, aggregate, err := c.runStage2(ctx, runID, query, assignment, successModels, responses)
	if err != nil {
		c.finishRun(runID, err)
		return nil, err
	}
	if c.observer != nil {
		c.observer.Stage2Complete(
			append([]RankingSubmission(nil), submissions...),
			append([]AggregateRanking(nil), aggregate...),
		)
	}

	result := &Result{
		Query:             query,
		Stage1:            stage1,
		Stage2:            submissions,
		AggregateRankings: aggregate,
		LabelToModel:      assignment.LabelToModel(),
		Responded:         len(successModels),
		Requested:         len(c.models),
	}

	// Stage 3: chairman synthesis.
	stage3, err := c.runStage3(ctx, runID, query, stage1, aggregate)
	if err != nil {
		c.finishRun(runID, err)
		if errors.Is(err, ErrSynthesisFailed) {
			// Stage-1/Stage-2 data stays available for diagnostics.
			return result, err
		}
		return nil, err
	}
	result.Stage3 = stage3
	if c.observer != nil {
		c.observer.Stage3Complete(*stage3)
	}

	outcome := "ok"
	if len(aggregate) == 0 {
		outcome = "degraded"
	}
	c.metrics.observeRun(outcome)
	c.emitter.Emit(emit.Event{RunID: runID, Msg: emit.MsgRunComplete, Meta: map[string]interface{}{
		"outcome":   outcome,
		"responded": result.Responded,
		"requested": result.Requested,
	}})
	return result, nil
}

// runStage1 fans the query out to the full council and joins on all
// calls. Outcomes come back in council-list order regardless of
// completion order.
func (c *Council) runStage1(ctx context.Context, runID, query string) ([]Stage1Result, []string, map[string]string, error) {
	c.emitter.Emit(emit.Event{RunID: runID, Stage: 1, Msg: emit.MsgStageStart, Meta: map[string]interface{}{
		"models": len(c.models),
	}})

	start := time.Now()
	calls := c.fanOut(ctx, runID, 1, c.models, stage1Messages(query))
	if err := ctx.Err(); err != nil {
		c.metrics.observeRun("cancelled")
		return nil, nil, nil, err
	}
	c.metrics.observeStage("stage1", time.Since(start))

	stage1 := make([]Stage1Result, len(c.models))
	var successModels []string
	responses := make(map[string]string)
	for i, name := range c.models {
		if calls[i].err != nil {
			stage1[i] = Stage1Result{Model: name, Failed: true}
			continue
		}
		stage1[i] = Stage1Result{
			Model:     name,
			Response:  calls[i].completion.Content,
			Reasoning: calls[i].completion.Reasoning,
		}
		successModels = append(successModels, name)
		responses[name] = calls[i].completion.Content
	}

	c.emitter.Emit(emit.Event{RunID: runID, Stage: 1, Msg: emit.MsgStageComplete, Meta: map[string]interface{}{
		"responded":   len(successModels),
		"requested":   len(c.models),
		"duration_ms": time.Since(start).Milliseconds(),
	}})

	if len(successModels) == 0 {
		c.metrics.observeRun("no_responses")
		return nil, nil, nil, fmt.Errorf("%w: all %d stage-1 calls failed", ErrNoResponses, len(c.models))
	}
	return stage1, successModels, responses, nil
}

// runStage2 sends one review prompt to every Stage-1-successful model and
// joins on all calls. Only models that produced a response review peers;
// a model with no Stage-1 output had nothing submitted for review and is
// not asked.
func (c *Council) runStage2(ctx context.Context, runID, query string, assignment LabelAssignment, reviewers []string, responses map[string]string) ([]RankingSubmission, []AggregateRanking, error) {
	c.emitter.Emit(emit.Event{RunID: runID, Stage: 2, Msg: emit.MsgStageStart, Meta: map[string]interface{}{
		"reviewers": len(reviewers),
	}})

	start := time.Now()
	messages := stage2Messages(query, assignment, responses)
	calls := c.fanOut(ctx, runID, 2, reviewers, messages)
	if err := ctx.Err(); err != nil {
		c.metrics.observeRun("cancelled")
		return nil, nil, err
	}
	c.metrics.observeStage("stage2", time.Since(start))

	var submissions []RankingSubmission
	for i, name := range reviewers {
		if calls[i].err != nil {
			continue
		}
		sub := RankingSubmission{Model: name, Raw: calls[i].completion.Content}
		parsed, err := parseRanking(sub.Raw, assignment.Labels())
		if err != nil {
			c.metrics.observeInvalidRanking()
		} else {
			sub.Parsed = parsed
		}
		submissions = append(submissions, sub)
	}

	aggregate := aggregateRankings(submissions, assignment, c.models)

	valid := 0
	for _, s := range submissions {
		if s.Valid() {
			valid++
		}
	}
	c.emitter.Emit(emit.Event{RunID: runID, Stage: 2, Msg: emit.MsgStageComplete, Meta: map[string]interface{}{
		"submissions":    len(submissions),
		"valid_rankings": valid,
		"duration_ms":    time.Since(start).Milliseconds(),
	}})
	return submissions, aggregate, nil
}

// runStage3 issues the single chairman call. It runs alone: it depends on
// the full outputs of both prior stages.
func (c *Council) runStage3(ctx context.Context, runID, query string, stage1 []Stage1Result, aggregate []AggregateRanking) (*Stage3Result, error) {
	c.emitter.Emit(emit.Event{RunID: runID, Stage: 3, Msg: emit.MsgStageStart, Meta: map[string]interface{}{
		"chairman": c.chairman,
	}})

	start := time.Now()
	completion, err := c.client.Complete(ctx, c.chairman, stage3Messages(query, stage1, aggregate))
	c.metrics.observeCall("stage3", err)
	c.metrics.observeStage("stage3", time.Since(start))

	if ctxErr := ctx.Err(); ctxErr != nil {
		c.metrics.observeRun("cancelled")
		return nil, ctxErr
	}
	if err != nil {
		c.metrics.observeRun("synthesis_failed")
		c.emitter.Emit(emit.Event{RunID: runID, Stage: 3, Model: c.chairman, Msg: emit.MsgStageComplete, Meta: map[string]interface{}{
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		}})
		return nil, fmt.Errorf("%w: %s: %v", ErrSynthesisFailed, c.chairman, err)
	}

	c.emitter.Emit(emit.Event{RunID: runID, Stage: 3, Model: c.chairman, Msg: emit.MsgStageComplete, Meta: map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
	}})
	return &Stage3Result{Model: c.chairman, Response: completion.Content}, nil
}

type callOutcome struct {
	completion model.Completion
	err        error
}

// fanOut dispatches one concurrent call per model and joins on all of
// them. Each call writes into its own pre-sized slot, indexed by the
// model's input position, so output order never depends on completion
// order. A failed call settles its slot with an error and never disturbs
// siblings.
func (c *Council) fanOut(ctx context.Context, runID string, stage int, models []string, messages []model.Message) []callOutcome {
	out := make([]callOutcome, len(models))
	stageLabel := fmt.Sprintf("stage%d", stage)

	var wg sync.WaitGroup
	for i, name := range models {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			start := time.Now()
			completion, err := c.client.Complete(ctx, name, messages)
			out[i] = callOutcome{completion: completion, err: err}

			c.metrics.observeCall(stageLabel, err)
			meta := map[string]interface{}{
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if err != nil {
				meta["error"] = err.Error()
			}
			c.emitter.Emit(emit.Event{RunID: runID, Stage: stage, Model: name, Msg: emit.MsgModelCall, Meta: meta})
		}(i, name)
	}
	wg.Wait()
	return out
}

func (c *Council) finishRun(runID string, err error) {
	c.emitter.Emit(emit.Event{RunID: runID, Msg: emit.MsgRunComplete, Meta: map[string]interface{}{
		"error": err.Error(),
	}})
}

func newRunID() string {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return "run-" + hex.EncodeToString(b[:])
}

func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.BigEndian.Uint64(b[:]))
}

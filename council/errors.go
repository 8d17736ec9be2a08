// Package council implements the three-stage multi-model deliberation
// pipeline: independent responses, anonymous peer review, and chairman
// synthesis.
package council

import (
	"errors"
	"fmt"
)

// ErrNoResponses indicates every Stage-1 call failed. The run halts
// before peer review; stages 2 and 3 are never dispatched.
var ErrNoResponses = errors.New("council: no models responded")

// ErrSynthesisFailed indicates the single chairman call failed after both
// prior stages completed. There is no fallback chairman; the Result
// returned alongside this error carries the Stage-1 and Stage-2 data but
// no Stage3 outcome.
var ErrSynthesisFailed = errors.New("council: chairman synthesis failed")

// RankingParseError reports why a reviewer's free-text output could not
// be resolved into a complete label ordering. Parse failures are
// per-submission and never abort the stage.
type RankingParseError struct {
	Reason string
}

func (e *RankingParseError) Error() string {
	return fmt.Sprintf("ranking parse: %s", e.Reason)
}

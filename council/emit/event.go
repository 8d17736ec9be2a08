package emit

// Event names emitted by a deliberation run.
const (
	MsgRunStart      = "run_start"
	MsgStageStart    = "stage_start"
	MsgModelCall     = "model_call"
	MsgStageComplete = "stage_complete"
	MsgRunComplete   = "run_complete"
)

// Event is one observability event from a deliberation run.
type Event struct {
	// RunID identifies the deliberation run that emitted this event.
	RunID string `json:"run_id"`

	// Stage is the pipeline stage (1-3) the event belongs to.
	// Zero for run-level events.
	Stage int `json:"stage"`

	// Model is the backend model the event concerns.
	// Empty for stage- and run-level events.
	Model string `json:"model,omitempty"`

	// Msg names the event; one of the Msg* constants.
	Msg string `json:"msg"`

	// Meta carries event-specific structured data. Common keys:
	//   - "duration_ms": call or stage duration in milliseconds
	//   - "error": failure details for a settled call
	//   - "responded", "requested": participant counts after a stage joins
	//   - "valid_rankings": count of parseable peer-review submissions
	Meta map[string]interface{} `json:"meta,omitempty"`
}

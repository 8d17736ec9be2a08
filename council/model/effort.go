package model

import "strings"

// Effort is a reasoning-intensity setting attached to a request payload.
type Effort string

// Reasoning effort levels. EffortDefault means the request carries no
// reasoning parameter at all.
const (
	EffortDefault Effort = ""
	EffortXHigh   Effort = "xhigh"
)

// EffortFor maps a model identifier to the reasoning effort its request
// payload must carry. Codex and Claude Opus families only produce usable
// deliberation output at maximum effort, so they are pinned to xhigh.
//
// The mapping is pure: same identifier in, same effort out, no side effects.
func EffortFor(modelName string) Effort {
	name := modelName
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ToLower(name)

	if strings.Contains(name, "codex") {
		return EffortXHigh
	}
	if strings.HasPrefix(name, "claude-opus") {
		return EffortXHigh
	}
	return EffortDefault
}

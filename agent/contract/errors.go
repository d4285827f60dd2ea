package contract

import (
	"context"
	"errors"
)

var (
	ErrModelInvoke       = errors.New("model invoke failed")
	ErrEmptyReply        = errors.New("model returned an empty reply")
	ErrPromptMissing     = errors.New("required prompt is missing")
	ErrUnknownAgent      = errors.New("unknown agent")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrHandoffNotAllowed = errors.New("handoff not allowed")
	ErrToolNotPermitted  = errors.New("tool not permitted for agent")
	ErrIterationLimit    = errors.New("iteration limit exceeded")
	ErrToolTimeout       = errors.New("tool call timed out")
	ErrInvalidArguments  = errors.New("invalid tool arguments")
	ErrValidation        = errors.New("validation failed")
)

// FailureKind classifies why a turn produced no answer.
type FailureKind string

const (
	FailureNone           FailureKind = ""
	FailureConfiguration  FailureKind = "configuration"
	FailureIterationLimit FailureKind = "iteration_limit"
	FailureTimeout        FailureKind = "timeout"
	FailureModel          FailureKind = "model"
)

// FailureKindOf maps a turn error to the failure kind shown to the front
// end. Unrecognised errors count as model failures.
func FailureKindOf(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrUnknownAgent),
		errors.Is(err, ErrUnknownTool),
		errors.Is(err, ErrHandoffNotAllowed),
		errors.Is(err, ErrToolNotPermitted),
		errors.Is(err, ErrPromptMissing),
		errors.Is(err, ErrValidation):
		return FailureConfiguration
	case errors.Is(err, ErrIterationLimit):
		return FailureIterationLimit
	case errors.Is(err, ErrToolTimeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	default:
		return FailureModel
	}
}

package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
)

// ApplyTurn folds a successful turn into the conversation. Failed turns leave
// the conversation untouched.
func ApplyTurn(in *GraphState) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: graph conversation is nil", contractx.ErrValidation)
	}
	if in.Failure != contractx.FailureNone {
		return in, nil
	}
	in.Conversation.Advance(in.Turn.History, in.Turn.Agent, in.Now)
	return in, nil
}

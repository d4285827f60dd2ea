package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Message)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: turn produced an empty message", contractx.ErrValidation)
	}

	agent := in.Turn.Agent
	if in.Failure != contractx.FailureNone && in.Conversation != nil {
		agent = in.Conversation.CurrentAgent()
	}
	return GraphOutput{
		Reply:     reply,
		SessionID: in.SessionID,
		Agent:     agent,
		Failure:   in.Failure,
	}, nil
}

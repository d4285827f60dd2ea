package orchestratornode

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
	"github.com/tanpawarit/restaurant-assistant/agent/dispatch"
	statex "github.com/tanpawarit/restaurant-assistant/agent/state"
)

// Turner runs one turn of the dispatch loop.
type Turner interface {
	RunTurn(ctx context.Context, history []*schema.Message, userText string, start contractx.AgentKind) (dispatch.Result, error)
}

// RunTurn hands the user's text to the agent the conversation ended on.
// A failed turn is not an error of the graph: the failure is classified and
// a fallback reply is prepared instead.
func RunTurn(ctx context.Context, in *GraphState, loop Turner, historyLimit int) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: graph conversation is nil", contractx.ErrValidation)
	}

	history := statex.TrimHistory(in.Conversation.History, historyLimit)
	res, err := loop.RunTurn(ctx, history, in.Text, in.Conversation.CurrentAgent())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		in.Failure = contractx.FailureKindOf(err)
		in.Message = FallbackReply(in.Failure)
		log.Error().Err(err).
			Str("session_id", in.SessionID).
			Str("failure", string(in.Failure)).
			Str("agent", string(res.Agent)).
			Int("iterations", res.Iterations).
			Msg("turn failed")
		return in, nil
	}

	in.Turn = res
	in.Message = res.Text
	return in, nil
}

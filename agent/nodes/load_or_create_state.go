package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
	statex "github.com/tanpawarit/restaurant-assistant/agent/state"
)

func LoadOrCreateState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	conv, err := store.Load(ctx, in.SessionID)
	switch {
	case errors.Is(err, statex.ErrStateNotFound):
		conv = statex.NewConversation(in.SessionID, in.Now)
	case err != nil:
		return nil, fmt.Errorf("load conversation %s: %w", in.SessionID, err)
	}
	in.Conversation = conv
	return in, nil
}

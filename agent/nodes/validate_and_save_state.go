package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
	statex "github.com/tanpawarit/restaurant-assistant/agent/state"
)

func ValidateAndSaveState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: graph conversation is nil", contractx.ErrValidation)
	}
	if in.Failure != contractx.FailureNone {
		return in, nil
	}

	if err := in.Conversation.Validate(); err != nil {
		return nil, fmt.Errorf("conversation validation failed: %w", err)
	}
	if err := store.Save(ctx, in.Conversation); err != nil {
		return nil, err
	}
	return in, nil
}

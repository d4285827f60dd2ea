package orchestratornode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
	"github.com/tanpawarit/restaurant-assistant/agent/dispatch"
	statex "github.com/tanpawarit/restaurant-assistant/agent/state"
)

var ErrInvalidMessage = errors.New("message is empty")

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply     string
	SessionID string
	Agent     contractx.AgentKind
	Failure   contractx.FailureKind
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Conversation *statex.Conversation
	Turn         dispatch.Result

	Message string
	Failure contractx.FailureKind
}

// ValidateRequest starts a new session when sessionID is blank.
func ValidateRequest(in GraphInput, nowFn func() time.Time, newID func() string) (*GraphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = newID()
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}

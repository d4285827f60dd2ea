package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
	nodex "github.com/tanpawarit/restaurant-assistant/agent/nodes"
	statex "github.com/tanpawarit/restaurant-assistant/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = statex.ErrInvalidSession
)

type Config struct {
	// HistoryLimit caps the messages replayed to the agents each turn.
	HistoryLimit int `envconfig:"HISTORY_LIMIT" split_words:"true" default:"40"`
}

// Reply is what the front end shows for one user message. Token identifies
// the session on the next call. When Failure is set, Text already holds the
// fallback message.
type Reply struct {
	Text    string
	Token   string
	Agent   contractx.AgentKind
	Failure contractx.FailureKind
}

type Orchestrator struct {
	store statex.Store
	loop  nodex.Turner

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	historyLimit int

	now   func() time.Time
	newID func() string
}

func New(store statex.Store, loop nodex.Turner, cfg Config) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if loop == nil {
		return nil, errors.New("dispatch loop is required")
	}

	o := &Orchestrator{
		store:        store,
		loop:         loop,
		historyLimit: cfg.HistoryLimit,
		now:          time.Now,
		newID:        uuid.NewString,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleMessage runs one conversation turn. An empty token starts a new
// session.
func (o *Orchestrator) HandleMessage(ctx context.Context, token string, text string) (Reply, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: token,
		Text:      text,
	})
	if err != nil {
		return Reply{}, err
	}
	return Reply{
		Text:    out.Reply,
		Token:   out.SessionID,
		Agent:   out.Agent,
		Failure: out.Failure,
	}, nil
}

// Reset forgets the session behind token.
func (o *Orchestrator) Reset(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return o.store.Delete(ctx, token)
}

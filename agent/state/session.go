package state

import (
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
)

var (
	ErrStateNotFound   = errors.New("conversation not found")
	ErrNilConversation = errors.New("conversation is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

// Conversation is everything kept between two turns of one session.
type Conversation struct {
	SessionID string              `json:"session_id"`
	History   []*schema.Message   `json:"history,omitempty"`
	Agent     contractx.AgentKind `json:"agent,omitempty"`
	Turns     int                 `json:"turns"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewConversation(sessionID string, now time.Time) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		Agent:     contractx.AgentTriage,
		UpdatedAt: now.UTC(),
	}
}

// CurrentAgent is the agent the next turn starts on.
func (c *Conversation) CurrentAgent() contractx.AgentKind {
	if c == nil || !c.Agent.Valid() {
		return contractx.AgentTriage
	}
	return c.Agent
}

// Advance records a completed turn.
func (c *Conversation) Advance(history []*schema.Message, agent contractx.AgentKind, now time.Time) {
	c.History = history
	c.Agent = agent
	c.Turns++
	c.UpdatedAt = now.UTC()
}

func (c *Conversation) Validate() error {
	if c == nil {
		return ErrNilConversation
	}
	if strings.TrimSpace(c.SessionID) == "" {
		return ErrInvalidSession
	}
	if c.Agent != "" && !c.Agent.Valid() {
		return contractx.ErrUnknownAgent
	}
	return nil
}

// TrimHistory keeps at most limit messages, dropping the oldest. The window
// always starts at a user message so no tool result is separated from the
// call that produced it. When the latest turn alone is longer than limit the
// window grows back to that turn's user message. limit <= 0 keeps everything.
func TrimHistory(history []*schema.Message, limit int) []*schema.Message {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	cut := len(history) - limit
	start := cut
	for start < len(history) && history[start].Role != schema.User {
		start++
	}
	if start == len(history) {
		start = cut
		for start > 0 && history[start].Role != schema.User {
			start--
		}
		log.Debug().
			Int("limit", limit).
			Int("kept", len(history)-start).
			Msg("latest turn exceeds history limit, keeping it whole")
	}
	out := make([]*schema.Message, len(history)-start)
	copy(out, history[start:])
	return out
}

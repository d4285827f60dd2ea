package contract

import (
	"fmt"
	"strings"
)

// AgentKind names one member of the closed agent set.
type AgentKind string

const (
	AgentTriage      AgentKind = "triage"
	AgentInformation AgentKind = "information"
	AgentOrder       AgentKind = "order"
	AgentReservation AgentKind = "reservation"
)

// AgentKinds lists every agent in a fixed order.
var AgentKinds = []AgentKind{AgentTriage, AgentInformation, AgentOrder, AgentReservation}

func (k AgentKind) Valid() bool {
	switch k {
	case AgentTriage, AgentInformation, AgentOrder, AgentReservation:
		return true
	}
	return false
}

func (k AgentKind) String() string {
	return string(k)
}

func ParseAgentKind(s string) (AgentKind, error) {
	k := AgentKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAgent, s)
	}
	return k, nil
}

// ToolOutcome is what a tool invocation hands back to the dispatch loop.
type ToolOutcome struct {
	Tool string `json:"tool"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// ToolFailure is appended to the history when a tool call is rejected before
// it runs, so the agent can correct its arguments.
type ToolFailure struct {
	Tool   string   `json:"tool"`
	Error  string   `json:"error"`
	Detail []string `json:"detail,omitempty"`
}

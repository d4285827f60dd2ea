package roster

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
	toolx "github.com/tanpawarit/restaurant-assistant/agent/tool"
)

const handoffPrefix = "transfer_to_"

// Definition is the static part of an agent: who it is, which tools it may
// call and whom it may hand the conversation to.
type Definition struct {
	Kind               contractx.AgentKind
	Name               string
	HandoffDescription string
	Tools              []string
	Handoffs           []contractx.AgentKind
}

// Definitions is the closed set of agents. Triage reaches every specialist
// in one hop and every specialist can hand back to Triage.
var Definitions = []Definition{
	{
		Kind:               contractx.AgentTriage,
		Name:               "Poligon Smaków Assistant",
		HandoffDescription: "Routes the guest to the right specialist. Use it when the guest asks about something outside your area.",
		Handoffs:           []contractx.AgentKind{contractx.AgentOrder, contractx.AgentReservation, contractx.AgentInformation},
	},
	{
		Kind:               contractx.AgentInformation,
		Name:               "Restaurant Information Specialist",
		HandoffDescription: "Specialist for answering questions about the restaurant, menu, and services.",
		Tools:              []string{toolx.QueryKnowledge},
		Handoffs:           []contractx.AgentKind{contractx.AgentTriage},
	},
	{
		Kind:               contractx.AgentOrder,
		Name:               "Order Taker",
		HandoffDescription: "Specialist for taking food and drink orders and checking their status.",
		Tools:              []string{toolx.PlaceOrder, toolx.GetOrderStatus, toolx.FindMenuItem},
		Handoffs:           []contractx.AgentKind{contractx.AgentTriage},
	},
	{
		Kind:               contractx.AgentReservation,
		Name:               "Reservation Manager",
		HandoffDescription: "Specialist for handling table reservations.",
		Tools:              []string{toolx.MakeReservation, toolx.ConvertDate},
		Handoffs:           []contractx.AgentKind{contractx.AgentTriage},
	},
}

// HandoffToolName is the pseudo-tool an agent calls to transfer to kind.
func HandoffToolName(kind contractx.AgentKind) string {
	return handoffPrefix + string(kind)
}

// ParseHandoff reports whether a tool call is a handoff and which agent it
// names. The named agent may not exist.
func ParseHandoff(toolName string) (contractx.AgentKind, bool) {
	if !strings.HasPrefix(toolName, handoffPrefix) {
		return "", false
	}
	return contractx.AgentKind(strings.TrimPrefix(toolName, handoffPrefix)), true
}

// Validate checks the handoff graph of defs: kinds are unique and known,
// handoff targets exist, Triage reaches every specialist directly and every
// specialist can return to Triage.
func Validate(defs []Definition) error {
	byKind := make(map[contractx.AgentKind]Definition, len(defs))
	for _, d := range defs {
		if !d.Kind.Valid() {
			return fmt.Errorf("%w: %q", contractx.ErrUnknownAgent, d.Kind)
		}
		if _, dup := byKind[d.Kind]; dup {
			return fmt.Errorf("%w: agent %s defined twice", contractx.ErrValidation, d.Kind)
		}
		byKind[d.Kind] = d
	}

	triage, ok := byKind[contractx.AgentTriage]
	if !ok {
		return fmt.Errorf("%w: triage agent is missing", contractx.ErrValidation)
	}
	if len(triage.Tools) > 0 {
		return fmt.Errorf("%w: triage agent must not hold tools", contractx.ErrValidation)
	}

	for _, d := range defs {
		for _, target := range d.Handoffs {
			if _, ok := byKind[target]; !ok {
				return fmt.Errorf("%w: %s hands off to %q", contractx.ErrUnknownAgent, d.Kind, target)
			}
			if target == d.Kind {
				return fmt.Errorf("%w: %s hands off to itself", contractx.ErrValidation, d.Kind)
			}
		}
		if d.Kind == contractx.AgentTriage {
			continue
		}
		if !hasHandoff(triage, d.Kind) {
			return fmt.Errorf("%w: triage cannot reach %s", contractx.ErrValidation, d.Kind)
		}
		if !hasHandoff(d, contractx.AgentTriage) {
			return fmt.Errorf("%w: %s cannot return to triage", contractx.ErrValidation, d.Kind)
		}
	}
	return nil
}

func hasHandoff(d Definition, target contractx.AgentKind) bool {
	for _, h := range d.Handoffs {
		if h == target {
			return true
		}
	}
	return false
}

package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
)

var (
	//go:embed template/handoff.txt
	handoffRaw string

	//go:embed template/triage.txt
	triageRaw string

	//go:embed template/information.txt
	informationRaw string

	//go:embed template/order.txt
	orderRaw string

	//go:embed template/reservation.txt
	reservationRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Handoff     string
	Triage      string
	Information string
	Order       string
	Reservation string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Handoff:     strings.TrimSpace(handoffRaw),
		Triage:      strings.TrimSpace(triageRaw),
		Information: strings.TrimSpace(informationRaw),
		Order:       strings.TrimSpace(orderRaw),
		Reservation: strings.TrimSpace(reservationRaw),
	}
}

// Instructions returns the system prompt for an agent with the shared
// handoff preamble in front.
func (p PromptSet) Instructions(kind contractx.AgentKind) (string, error) {
	var body string
	switch kind {
	case contractx.AgentTriage:
		body = p.Triage
	case contractx.AgentInformation:
		body = p.Information
	case contractx.AgentOrder:
		body = p.Order
	case contractx.AgentReservation:
		body = p.Reservation
	default:
		return "", fmt.Errorf("%w: %q", contractx.ErrUnknownAgent, kind)
	}
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("%w: %s", contractx.ErrPromptMissing, kind)
	}
	if p.Handoff == "" {
		return body, nil
	}
	return p.Handoff + "\n\n" + body, nil
}

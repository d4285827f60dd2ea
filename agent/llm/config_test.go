package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
)

func TestOpenRouterForOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:                 " key ",
		Model:                  "openai/gpt-4o-mini",
		MaxCompletionToken:     800,
		Temperature:            0.3,
		TriageTemperature:      0,
		InformationTemperature: -1,
		OrderTemperature:       -1,
		ReservationModel:       "anthropic/claude-3.5-haiku",
		ReservationTemperature: 0.1,
	}

	triage := cfg.OpenRouterFor(contractx.AgentTriage)
	if triage.Model != "openai/gpt-4o-mini" || triage.Temperature != 0 {
		t.Fatalf("unexpected triage config: %+v", triage)
	}
	info := cfg.OpenRouterFor(contractx.AgentInformation)
	if info.Temperature != 0.3 {
		t.Fatalf("information temperature = %v, want default 0.3", info.Temperature)
	}
	res := cfg.OpenRouterFor(contractx.AgentReservation)
	if res.Model != "anthropic/claude-3.5-haiku" || res.Temperature != 0.1 {
		t.Fatalf("unexpected reservation config: %+v", res)
	}
	if res.APIKey != "key" || res.MaxCompletionToken == nil || *res.MaxCompletionToken != 800 {
		t.Fatalf("shared settings not carried: %+v", res)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := (Config{Model: "m", MaxCompletionToken: 1}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing key, got %v", err)
	}
	if err := (Config{APIKey: "k", Model: "m", MaxCompletionToken: 1}).Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestFailureKindOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want FailureKind
	}{
		{nil, FailureNone},
		{fmt.Errorf("%w: order -> reservation", ErrHandoffNotAllowed), FailureConfiguration},
		{fmt.Errorf("%w: tool=place_order", ErrToolNotPermitted), FailureConfiguration},
		{fmt.Errorf("%w: \"sommelier\"", ErrUnknownAgent), FailureConfiguration},
		{ErrPromptMissing, FailureConfiguration},
		{fmt.Errorf("%w: 10 model invocations", ErrIterationLimit), FailureIterationLimit},
		{fmt.Errorf("%w: tool=place_order", ErrToolTimeout), FailureTimeout},
		{context.DeadlineExceeded, FailureTimeout},
		{fmt.Errorf("%w: agent=triage: boom", ErrModelInvoke), FailureModel},
		{errors.New("unexpected"), FailureModel},
	}
	for _, tc := range cases {
		if got := FailureKindOf(tc.err); got != tc.want {
			t.Fatalf("FailureKindOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestParseAgentKind(t *testing.T) {
	t.Parallel()

	kind, err := ParseAgentKind("  Reservation ")
	if err != nil || kind != AgentReservation {
		t.Fatalf("ParseAgentKind() = %q, %v", kind, err)
	}
	if _, err := ParseAgentKind("sommelier"); !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
	for _, k := range AgentKinds {
		if !k.Valid() {
			t.Fatalf("%s should be valid", k)
		}
	}
}

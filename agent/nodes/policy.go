package orchestratornode

import (
	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
)

const fallbackReply = "I'm sorry, something went wrong on my side. Please try again."

// FallbackReply is what the guest sees when a turn fails.
func FallbackReply(kind contractx.FailureKind) string {
	switch kind {
	case contractx.FailureTimeout:
		return "I'm sorry, that took longer than expected. Please try again."
	case contractx.FailureIterationLimit:
		return "I'm sorry, I couldn't finish that request. Could you try again, perhaps one thing at a time?"
	default:
		return fallbackReply
	}
}

package contract

import "context"

// Knowledge answers free-text questions from the restaurant's data.
type Knowledge interface {
	Query(ctx context.Context, q string) (string, error)
}

// Notifier delivers staff notifications about orders and bookings.
type Notifier interface {
	Notify(ctx context.Context, event string, payload any) error
}

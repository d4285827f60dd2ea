// Package tool holds the typed operations agents may call. Every call ends
// in a plain string; errors below this package never reach the model.
package tool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xeipuuv/gojsonschema"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
	"github.com/tanpawarit/restaurant-assistant/restaurant"
)

const (
	PlaceOrder      = "place_order"
	GetOrderStatus  = "get_order_status"
	MakeReservation = "make_reservation"
	ConvertDate     = "convert_natural_date_to_iso"
	FindMenuItem    = "find_menu_item_by_name"
	QueryKnowledge  = "query_restaurant_knowledge_base"
)

const (
	maxMenuMatches = 5

	EventOrderUpdated   = "order.updated"
	EventBookingCreated = "booking.created"
)

type SideEffect string

const (
	ReadOnly SideEffect = "read-only"
	Mutating SideEffect = "mutating"
)

type OutcomeKind string

const (
	OutcomeSuccess      OutcomeKind = "success"
	OutcomeNotFound     OutcomeKind = "not_found"
	OutcomeInvalid      OutcomeKind = "invalid"
	OutcomeBackendError OutcomeKind = "backend_error"
)

// Outcome is what a handler returns. Err is only set for backend errors and
// never leaves the catalog.
type Outcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

func success(text string) Outcome  { return Outcome{Kind: OutcomeSuccess, Text: text} }
func notFound(text string) Outcome { return Outcome{Kind: OutcomeNotFound, Text: text} }
func invalid(text string) Outcome  { return Outcome{Kind: OutcomeInvalid, Text: text} }
func backend(err error) Outcome    { return Outcome{Kind: OutcomeBackendError, Err: err} }

// Result is the text-only view of an outcome handed to the dispatch loop.
type Result struct {
	Tool string
	Kind OutcomeKind
	Text string
}

func (r Result) Contract() contractx.ToolOutcome {
	return contractx.ToolOutcome{Tool: r.Tool, Kind: string(r.Kind), Text: r.Text}
}

type Handler func(ctx context.Context, args json.RawMessage) Outcome

type Tool struct {
	Name        string
	Description string
	// Schema is the JSON Schema of the arguments object.
	Schema map[string]any
	Effect SideEffect
	// Apology replaces the text of backend errors.
	Apology string

	handler  Handler
	compiled *gojsonschema.Schema
}

// Deps are the collaborators the tools read and write.
type Deps struct {
	Store     restaurant.Store
	Knowledge contractx.Knowledge
	Notifier  contractx.Notifier
	Now       func() time.Time
}

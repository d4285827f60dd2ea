package tool

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/restaurant-assistant/restaurant"
)

type handlers struct {
	deps Deps
}

func (h *handlers) tools() []*Tool {
	return []*Tool{
		{
			Name:        PlaceOrder,
			Description: "Place a food or drink order for a table. Ordering again for the same table adds the items to its existing order.",
			Schema:      placeOrderSchema,
			Effect:      Mutating,
			Apology:     "Sorry, I encountered an error while placing the order. Please try again in a moment.",
			handler:     h.placeOrder,
		},
		{
			Name:        GetOrderStatus,
			Description: "Check the status and contents of the order for a table, or of an order by its ID.",
			Schema:      orderStatusSchema,
			Effect:      ReadOnly,
			Apology:     "Sorry, I couldn't check the order status right now. Please try again later.",
			handler:     h.orderStatus,
		},
		{
			Name:        MakeReservation,
			Description: "Book a table. booking_date must be YYYY-MM-DD and booking_time HH:MM; convert natural date expressions first.",
			Schema:      reservationSchema,
			Effect:      Mutating,
			Apology:     "Sorry, I encountered an error while trying to make your reservation. Please try again later.",
			handler:     h.makeReservation,
		},
		{
			Name:        ConvertDate,
			Description: "Convert a natural language date such as 'tomorrow' or 'jutro' to YYYY-MM-DD, relative to today. Returns null when the expression is not a date.",
			Schema:      convertDateSchema,
			Effect:      ReadOnly,
			Apology:     "Sorry, I couldn't work out that date.",
			handler:     h.convertDate,
		},
		{
			Name:        FindMenuItem,
			Description: "Find menu items whose name contains the query, case-insensitively. Returns up to 5 matches with ID, name and price.",
			Schema:      findMenuItemSchema,
			Effect:      ReadOnly,
			Apology:     "Sorry, I couldn't search the menu right now.",
			handler:     h.findMenuItem,
		},
		{
			Name:        QueryKnowledge,
			Description: "Look up facts about the restaurant: menu details, prices, allergens, opening hours, address, contact, payment, parking, summer garden, reservations policy, special offers and FAQ.",
			Schema:      queryKnowledgeSchema,
			Effect:      ReadOnly,
			Apology:     "Sorry, I encountered an error while trying to access the restaurant's information.",
			handler:     h.queryKnowledge,
		},
	}
}

func decode[T any](args json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(args, &v)
	return v, err
}

// reason strips the record sentinel from a validation error so the text
// reads as a plain sentence.
func reason(err error) string {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, restaurant.ErrInvalidRecord.Error()+": ")
	msg = strings.TrimPrefix(msg, restaurant.ErrNotFound.Error()+": ")
	return msg
}

func isInvalid(err error) bool {
	return errors.Is(err, restaurant.ErrInvalidRecord)
}

func (h *handlers) notify(ctx context.Context, event string, payload any) {
	if h.deps.Notifier == nil {
		return
	}
	if err := h.deps.Notifier.Notify(ctx, event, payload); err != nil {
		log.Warn().Err(err).Str("event", event).Msg("staff notification failed")
	}
}

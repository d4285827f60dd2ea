package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tanpawarit/restaurant-assistant/agent/dates"
	"github.com/tanpawarit/restaurant-assistant/restaurant"
)

type reservationArgs struct {
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email"`
	BookingDate     string `json:"booking_date"`
	BookingTime     string `json:"booking_time"`
	PartySize       int    `json:"party_size"`
	SpecialRequests string `json:"special_requests"`
}

type convertDateArgs struct {
	DateExpression string `json:"date_expression"`
}

func (h *handlers) makeReservation(ctx context.Context, raw json.RawMessage) Outcome {
	args, err := decode[reservationArgs](raw)
	if err != nil {
		return invalid("The reservation details could not be read.")
	}

	b := &restaurant.Booking{
		CustomerName:    strings.TrimSpace(args.CustomerName),
		CustomerPhone:   strings.TrimSpace(args.CustomerPhone),
		CustomerEmail:   strings.TrimSpace(args.CustomerEmail),
		BookingDate:     strings.TrimSpace(args.BookingDate),
		BookingTime:     strings.TrimSpace(args.BookingTime),
		PartySize:       args.PartySize,
		SpecialRequests: strings.TrimSpace(args.SpecialRequests),
		Status:          restaurant.BookingPending,
	}
	if err := b.Validate(); err != nil {
		return invalid("Sorry, I couldn't make the reservation: " + reason(err) + ".")
	}

	err = h.deps.Store.CreateBooking(ctx, b)
	switch {
	case isInvalid(err):
		return invalid("Sorry, I couldn't make the reservation: " + reason(err) + ".")
	case err != nil:
		return backend(fmt.Errorf("create booking for %s: %w", b.CustomerName, err))
	}

	h.notify(ctx, EventBookingCreated, b)
	return success(fmt.Sprintf(
		"Reservation confirmed for %s on %s at %s for %d guests. Booking ID: %d. Status: %s. We will contact you at %s if needed.",
		b.CustomerName, b.BookingDate, b.BookingTime, b.PartySize, b.ID, b.Status, b.CustomerPhone,
	))
}

func (h *handlers) convertDate(_ context.Context, raw json.RawMessage) Outcome {
	args, err := decode[convertDateArgs](raw)
	if err != nil {
		return invalid("Please provide the date expression as text.")
	}
	iso := dates.ToISO(args.DateExpression, h.deps.Now())
	if iso == "" {
		return success("null")
	}
	return success(iso)
}

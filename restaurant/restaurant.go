// Package restaurant holds the domain model of the restaurant and the
// persistence contract the assistant's tools work against.
package restaurant

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRecord = errors.New("invalid record")
)

type Info struct {
	ID                    int64  `json:"id" yaml:"-"`
	Name                  string `json:"name" yaml:"name"`
	Address               string `json:"address" yaml:"address"`
	Phone                 string `json:"phone" yaml:"phone"`
	Email                 string `json:"email" yaml:"email"`
	Website               string `json:"website" yaml:"website"`
	CuisineType           string `json:"cuisine_type" yaml:"cuisine_type"`
	PaymentMethods        string `json:"payment_methods" yaml:"payment_methods"`
	ParkingAvailable      bool   `json:"parking_available" yaml:"parking_available"`
	SummerGardenAvailable bool   `json:"summer_garden_available" yaml:"summer_garden_available"`
	ReservationsInfo      string `json:"reservations_info" yaml:"reservations_info"`
	OpeningHoursWeekday   string `json:"opening_hours_weekday" yaml:"opening_hours_weekday"`
	OpeningHoursWeekend   string `json:"opening_hours_weekend" yaml:"opening_hours_weekend"`
}

type MenuCategory struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Items []MenuItem `json:"items,omitempty"`
}

type MenuItem struct {
	ID          int64    `json:"id"`
	CategoryID  int64    `json:"category_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Options     string   `json:"options,omitempty"`
	Allergens   []string `json:"allergens,omitempty"`
}

// PriceLabel renders the price the way guests see it: a PLN amount (with
// options appended), the options text alone, or a prompt to ask staff.
func (m MenuItem) PriceLabel() string {
	switch {
	case m.Price > 0 && strings.TrimSpace(m.Options) != "":
		return fmt.Sprintf("%.2f PLN (%s)", m.Price, strings.TrimSpace(m.Options))
	case m.Price > 0:
		return fmt.Sprintf("%.2f PLN", m.Price)
	case strings.TrimSpace(m.Options) != "":
		return strings.TrimSpace(m.Options)
	default:
		return "ask staff for the price"
	}
}

type SpecialOffer struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceInfo   string `json:"price_info,omitempty"`
	Validity    string `json:"validity,omitempty"`
	Details     string `json:"details,omitempty"`
}

type FAQ struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

type Booking struct {
	ID              int64         `json:"id"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	CustomerEmail   string        `json:"customer_email,omitempty"`
	BookingDate     string        `json:"booking_date"`
	BookingTime     string        `json:"booking_time"`
	PartySize       int           `json:"party_size"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Validate checks the fields a booking cannot be persisted without.
func (b Booking) Validate() error {
	if strings.TrimSpace(b.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(b.CustomerPhone) == "" {
		return fmt.Errorf("%w: customer phone is required", ErrInvalidRecord)
	}
	if _, err := time.Parse(DateLayout, b.BookingDate); err != nil {
		return fmt.Errorf("%w: booking date %q is not YYYY-MM-DD", ErrInvalidRecord, b.BookingDate)
	}
	if _, err := time.Parse(TimeLayout, b.BookingTime); err != nil {
		return fmt.Errorf("%w: booking time %q is not HH:MM", ErrInvalidRecord, b.BookingTime)
	}
	if b.PartySize < 1 {
		return fmt.Errorf("%w: party size must be at least 1", ErrInvalidRecord)
	}
	if b.Status != "" && !b.Status.Valid() {
		return fmt.Errorf("%w: unknown booking status %q", ErrInvalidRecord, b.Status)
	}
	return nil
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in-progress"
	OrderServed     OrderStatus = "served"
	OrderPaid       OrderStatus = "paid"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderInProgress, OrderServed, OrderPaid:
		return true
	}
	return false
}

type OrderItem struct {
	ID             int64  `json:"id,omitempty"`
	MenuItemID     int64  `json:"menu_item_id,omitempty"`
	ItemName       string `json:"item_name"`
	Quantity       int    `json:"quantity"`
	SpecialRequest string `json:"special_request,omitempty"`
}

type Order struct {
	ID          int64       `json:"id"`
	TableNumber int         `json:"table_number"`
	Items       []OrderItem `json:"items"`
	Status      OrderStatus `json:"status"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ItemCount sums quantities across every line of the order.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Summary renders the order lines as "2x Pierogi, 1x Kompot".
func (o Order) Summary() string {
	return SummarizeItems(o.Items)
}

func SummarizeItems(items []OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		line := fmt.Sprintf("%dx %s", it.Quantity, it.ItemName)
		if req := strings.TrimSpace(it.SpecialRequest); req != "" {
			line += " (" + req + ")"
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, ", ")
}

func ValidateOrderItems(tableNumber int, items []OrderItem) error {
	if tableNumber < 1 {
		return fmt.Errorf("%w: table number must be positive", ErrInvalidRecord)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidRecord)
	}
	for i, it := range items {
		if strings.TrimSpace(it.ItemName) == "" {
			return fmt.Errorf("%w: item %d has no name", ErrInvalidRecord, i+1)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: item %d quantity must be at least 1", ErrInvalidRecord, i+1)
		}
	}
	return nil
}

package restaurant

import "context"

type InfoStore interface {
	GetInfo(ctx context.Context) (*Info, error)
	SaveInfo(ctx context.Context, info *Info) error
}

type MenuStore interface {
	CreateCategory(ctx context.Context, name string) (*MenuCategory, error)
	// ListCategories returns every category with its items, ordered by ID.
	ListCategories(ctx context.Context) ([]MenuCategory, error)
	CreateMenuItem(ctx context.Context, item *MenuItem) error
	GetMenuItem(ctx context.Context, id int64) (*MenuItem, error)
	UpdateMenuItem(ctx context.Context, item *MenuItem) error
	DeleteMenuItem(ctx context.Context, id int64) error
	// FindMenuItemsByName is a case-insensitive substring search ordered by
	// item ID. A limit <= 0 means no limit.
	FindMenuItemsByName(ctx context.Context, query string, limit int) ([]MenuItem, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, b *Booking) error
	GetBooking(ctx context.Context, id int64) (*Booking, error)
	ListBookingsByDate(ctx context.Context, date string) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status BookingStatus) (*Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
}

type OrderStore interface {
	// AppendOrderItems creates the order for the table if none exists,
	// otherwise appends the items and resets the status to pending. The
	// append is atomic per table.
	AppendOrderItems(ctx context.Context, tableNumber int, items []OrderItem) (*Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	GetOrderByTable(ctx context.Context, tableNumber int) (*Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type OfferStore interface {
	CreateSpecialOffer(ctx context.Context, o *SpecialOffer) error
	ListSpecialOffers(ctx context.Context) ([]SpecialOffer, error)
	DeleteSpecialOffer(ctx context.Context, id int64) error
}

type FAQStore interface {
	CreateFAQ(ctx context.Context, f *FAQ) error
	ListFAQs(ctx context.Context) ([]FAQ, error)
	DeleteFAQ(ctx context.Context, id int64) error
}

// Store is the full data store contract. Lookups that find nothing return
// ErrNotFound.
type Store interface {
	InfoStore
	MenuStore
	BookingStore
	OrderStore
	OfferStore
	FAQStore
}

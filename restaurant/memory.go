package restaurant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a mutex-guarded Store. Every method holds the lock for
// its whole body, so an order append for one table can never interleave
// with another append for the same table.
type MemoryStore struct {
	mu sync.Mutex

	info       *Info
	categories map[int64]*MenuCategory
	items      map[int64]*MenuItem
	bookings   map[int64]*Booking
	orders     map[int64]*Order
	tables     map[int]int64
	offers     map[int64]*SpecialOffer
	faqs       map[int64]*FAQ

	nextID int64
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: map[int64]*MenuCategory{},
		items:      map[int64]*MenuItem{},
		bookings:   map[int64]*Booking{},
		orders:     map[int64]*Order{},
		tables:     map[int]int64{},
		offers:     map[int64]*SpecialOffer{},
		faqs:       map[int64]*FAQ{},
		now:        time.Now,
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) GetInfo(ctx context.Context) (*Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil, ErrNotFound
	}
	out := *s.info
	return &out, nil
}

func (s *MemoryStore) SaveInfo(ctx context.Context, info *Info) error {
	if info == nil {
		return fmt.Errorf("%w: restaurant info is nil", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		info.ID = s.id()
	} else {
		info.ID = s.info.ID
	}
	cp := *info
	s.info = &cp
	return nil
}

func (s *MemoryStore) CreateCategory(ctx context.Context, name string) (*MenuCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrInvalidRecord, name)
		}
	}
	c := &MenuCategory{ID: s.id(), Name: name}
	s.categories[c.ID] = c
	return &MenuCategory{ID: c.ID, Name: c.Name}, nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]MenuCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MenuCategory, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, MenuCategory{ID: c.ID, Name: c.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	items := s.sortedItems()
	for i := range out {
		for _, it := range items {
			if it.CategoryID == out[i].ID {
				out[i].Items = append(out[i].Items, it)
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) sortedItems() []MenuItem {
	items := make([]MenuItem, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, copyMenuItem(it))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (s *MemoryStore) CreateMenuItem(ctx context.Context, item *MenuItem) error {
	if item == nil || strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: menu item name is required", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[item.CategoryID]; !ok {
		return fmt.Errorf("%w: category %d", ErrNotFound, item.CategoryID)
	}
	item.ID = s.id()
	cp := copyMenuItem(item)
	s.items[item.ID] = &cp
	return nil
}

func (s *MemoryStore) GetMenuItem(ctx context.Context, id int64) (*MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyMenuItem(it)
	return &cp, nil
}

func (s *MemoryStore) UpdateMenuItem(ctx context.Context, item *MenuItem) error {
	if item == nil {
		return fmt.Errorf("%w: menu item is nil", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.categories[item.CategoryID]; !ok {
		return fmt.Errorf("%w: category %d", ErrNotFound, item.CategoryID)
	}
	cp := copyMenuItem(item)
	s.items[item.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteMenuItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) FindMenuItemsByName(ctx context.Context, query string, limit int) ([]MenuItem, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []MenuItem
	for _, it := range s.sortedItems() {
		if q != "" && !strings.Contains(strings.ToLower(it.Name), q) {
			continue
		}
		out = append(out, it)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateBooking(ctx context.Context, b *Booking) error {
	if b == nil {
		return fmt.Errorf("%w: booking is nil", ErrInvalidRecord)
	}
	if b.Status == "" {
		b.Status = BookingPending
	}
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	b.CreatedAt = s.now().UTC()
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) ListBookingsByDate(ctx context.Context, date string) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, b := range s.bookings {
		if b.BookingDate == date {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BookingTime != out[j].BookingTime {
			return out[i].BookingTime < out[j].BookingTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) UpdateBookingStatus(ctx context.Context, id int64, status BookingStatus) (*Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", ErrInvalidRecord, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.Status = status
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) DeleteBooking(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *MemoryStore) AppendOrderItems(ctx context.Context, tableNumber int, items []OrderItem) (*Order, error) {
	if err := ValidateOrderItems(tableNumber, items); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	var o *Order
	if id, ok := s.tables[tableNumber]; ok {
		o = s.orders[id]
	} else {
		o = &Order{ID: s.id(), TableNumber: tableNumber, CreatedAt: now}
		s.orders[o.ID] = o
		s.tables[tableNumber] = o.ID
	}
	for _, it := range items {
		it.ID = s.id()
		o.Items = append(o.Items, it)
	}
	o.Status = OrderPending
	o.UpdatedAt = now
	return copyOrder(o), nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyOrder(o), nil
}

func (s *MemoryStore) GetOrderByTable(ctx context.Context, tableNumber int) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tables[tableNumber]
	if !ok {
		return nil, ErrNotFound
	}
	return copyOrder(s.orders[id]), nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrInvalidRecord, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = s.now().UTC()
	return copyOrder(o), nil
}

func (s *MemoryStore) DeleteOrder(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.tables, o.TableNumber)
	delete(s.orders, id)
	return nil
}

func (s *MemoryStore) CreateSpecialOffer(ctx context.Context, o *SpecialOffer) error {
	if o == nil || strings.TrimSpace(o.Title) == "" {
		return fmt.Errorf("%w: offer title is required", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.id()
	cp := *o
	s.offers[o.ID] = &cp
	return nil
}

func (s *MemoryStore) ListSpecialOffers(ctx context.Context) ([]SpecialOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SpecialOffer, 0, len(s.offers))
	for _, o := range s.offers {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) DeleteSpecialOffer(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offers[id]; !ok {
		return ErrNotFound
	}
	delete(s.offers, id)
	return nil
}

func (s *MemoryStore) CreateFAQ(ctx context.Context, f *FAQ) error {
	if f == nil || strings.TrimSpace(f.Question) == "" {
		return fmt.Errorf("%w: faq question is required", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.id()
	cp := *f
	s.faqs[f.ID] = &cp
	return nil
}

func (s *MemoryStore) ListFAQs(ctx context.Context) ([]FAQ, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FAQ, 0, len(s.faqs))
	for _, f := range s.faqs {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) DeleteFAQ(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.faqs[id]; !ok {
		return ErrNotFound
	}
	delete(s.faqs, id)
	return nil
}

func copyMenuItem(it *MenuItem) MenuItem {
	cp := *it
	cp.Allergens = append([]string(nil), it.Allergens...)
	return cp
}

func copyOrder(o *Order) *Order {
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	return &cp
}

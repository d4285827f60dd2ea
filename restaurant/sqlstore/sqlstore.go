// Package sqlstore implements restaurant.Store on top of bun, against
// Postgres in production and SQLite for local runs and tests.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"

	"github.com/tanpawarit/restaurant-assistant/restaurant"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver       string `envconfig:"DRIVER" default:"sqlite"`
	DSN          string `envconfig:"DSN" default:"file:restaurant.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"`
	MaxOpenConns int    `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"0"`
	LogQueries   bool   `envconfig:"LOG_QUERIES" split_words:"true" default:"false"`
}

var _ restaurant.Store = (*Store)(nil)

type Store struct {
	db  *bun.DB
	now func() time.Time
}

// Open connects to the configured database and returns a bun handle with
// the join models registered.
func Open(cfg Config) (*bun.DB, error) {
	var db *bun.DB
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case DriverSQLite, "":
		sqldb, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite serialises writers; one connection keeps in-memory databases shared.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.LogQueries {
		db.AddQueryHook(queryLogHook{})
	}
	return db, nil
}

func New(db *bun.DB) *Store {
	db.RegisterModel((*menuItemAllergenModel)(nil))
	return &Store{db: db, now: time.Now}
}

// CreateSchema creates every table that does not exist yet.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, m := range models {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return restaurant.ErrNotFound
	}
	return err
}

func (s *Store) GetInfo(ctx context.Context) (*restaurant.Info, error) {
	m := new(infoModel)
	if err := s.db.NewSelect().Model(m).Order("ri.id ASC").Limit(1).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return m.toDomain(), nil
}

func (s *Store) SaveInfo(ctx context.Context, info *restaurant.Info) error {
	if info == nil {
		return fmt.Errorf("%w: restaurant info is nil", restaurant.ErrInvalidRecord)
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(infoModel)
		err := tx.NewSelect().Model(existing).Order("ri.id ASC").Limit(1).Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			m := infoFromDomain(info)
			m.ID = 0
			if _, err := tx.NewInsert().Model(m).Exec(ctx); err != nil {
				return err
			}
			info.ID = m.ID
			return nil
		case err != nil:
			return err
		}
		m := infoFromDomain(info)
		m.ID = existing.ID
		if _, err := tx.NewUpdate().Model(m).WherePK().Exec(ctx); err != nil {
			return err
		}
		info.ID = m.ID
		return nil
	})
}

func (s *Store) CreateCategory(ctx context.Context, name string) (*restaurant.MenuCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", restaurant.ErrInvalidRecord)
	}
	m := &categoryModel{Name: name}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return nil, err
	}
	return &restaurant.MenuCategory{ID: m.ID, Name: m.Name}, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]restaurant.MenuCategory, error) {
	var cats []*categoryModel
	if err := s.db.NewSelect().Model(&cats).Order("mc.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	var items []*menuItemModel
	if err := s.db.NewSelect().Model(&items).Relation("Allergens").Order("mi.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	byCategory := make(map[int64][]restaurant.MenuItem, len(cats))
	for _, it := range items {
		byCategory[it.CategoryID] = append(byCategory[it.CategoryID], it.toDomain())
	}
	out := make([]restaurant.MenuCategory, 0, len(cats))
	for _, c := range cats {
		out = append(out, restaurant.MenuCategory{ID: c.ID, Name: c.Name, Items: byCategory[c.ID]})
	}
	return out, nil
}

func (s *Store) CreateMenuItem(ctx context.Context, item *restaurant.MenuItem) error {
	if item == nil || strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: menu item name is required", restaurant.ErrInvalidRecord)
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*categoryModel)(nil)).Where("mc.id = ?", item.CategoryID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: category %d", restaurant.ErrNotFound, item.CategoryID)
		}

		m := &menuItemModel{
			CategoryID:  item.CategoryID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Options:     item.Options,
		}
		if _, err := tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return err
		}
		item.ID = m.ID
		return linkAllergens(ctx, tx, m.ID, item.Allergens)
	})
}

// linkAllergens replaces the allergen set of a menu item, creating
// allergens that do not exist yet.
func linkAllergens(ctx context.Context, tx bun.Tx, itemID int64, names []string) error {
	if _, err := tx.NewDelete().Model((*menuItemAllergenModel)(nil)).Where("menu_item_id = ?", itemID).Exec(ctx); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true

		a := &allergenModel{Name: name}
		if _, err := tx.NewInsert().
			Model(a).
			On("CONFLICT (name) DO UPDATE").
			Set("name = EXCLUDED.name").
			Returning("id").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert allergen %q: %w", name, err)
		}
		link := &menuItemAllergenModel{MenuItemID: itemID, AllergenID: a.ID}
		if _, err := tx.NewInsert().Model(link).Exec(ctx); err != nil {
			return fmt.Errorf("link allergen %q: %w", name, err)
		}
	}
	return nil
}

func (s *Store) GetMenuItem(ctx context.Context, id int64) (*restaurant.MenuItem, error) {
	m := new(menuItemModel)
	if err := s.db.NewSelect().Model(m).Relation("Allergens").Where("mi.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	out := m.toDomain()
	return &out, nil
}

func (s *Store) UpdateMenuItem(ctx context.Context, item *restaurant.MenuItem) error {
	if item == nil {
		return fmt.Errorf("%w: menu item is nil", restaurant.ErrInvalidRecord)
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		m := &menuItemModel{
			ID:          item.ID,
			CategoryID:  item.CategoryID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Options:     item.Options,
		}
		res, err := tx.NewUpdate().Model(m).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return restaurant.ErrNotFound
		}
		return linkAllergens(ctx, tx, item.ID, item.Allergens)
	})
}

func (s *Store) DeleteMenuItem(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*menuItemAllergenModel)(nil)).Where("menu_item_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		return deleteByID(ctx, tx, (*menuItemModel)(nil), id)
	})
}

func (s *Store) FindMenuItemsByName(ctx context.Context, query string, limit int) ([]restaurant.MenuItem, error) {
	needle := strings.ToLower(strings.TrimSpace(query))

	var rows []*menuItemModel
	q := s.db.NewSelect().
		Model(&rows).
		Relation("Allergens").
		Order("mi.id ASC")
	// SQLite's LOWER only folds ASCII, so there the match runs in Go.
	if s.db.Dialect().Name() == dialect.PG {
		q = q.Where(`mi.name ILIKE ? ESCAPE '\'`, "%"+escapeLike(needle)+"%")
		if limit > 0 {
			q = q.Limit(limit)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]restaurant.MenuItem, 0, len(rows))
	for _, r := range rows {
		if !strings.Contains(strings.ToLower(r.Name), needle) {
			continue
		}
		out = append(out, r.toDomain())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *Store) CreateBooking(ctx context.Context, b *restaurant.Booking) error {
	if b == nil {
		return fmt.Errorf("%w: booking is nil", restaurant.ErrInvalidRecord)
	}
	if b.Status == "" {
		b.Status = restaurant.BookingPending
	}
	if err := b.Validate(); err != nil {
		return err
	}
	m := &bookingModel{
		CustomerName:    b.CustomerName,
		CustomerPhone:   b.CustomerPhone,
		CustomerEmail:   b.CustomerEmail,
		BookingDate:     b.BookingDate,
		BookingTime:     b.BookingTime,
		PartySize:       b.PartySize,
		SpecialRequests: b.SpecialRequests,
		Status:          string(b.Status),
		CreatedAt:       s.now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return err
	}
	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id int64) (*restaurant.Booking, error) {
	m := new(bookingModel)
	if err := s.db.NewSelect().Model(m).Where("b.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return m.toDomain(), nil
}

func (s *Store) ListBookingsByDate(ctx context.Context, date string) ([]restaurant.Booking, error) {
	var rows []*bookingModel
	if err := s.db.NewSelect().
		Model(&rows).
		Where("b.booking_date = ?", date).
		Order("b.booking_time ASC", "b.id ASC").
		Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]restaurant.Booking, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r.toDomain())
	}
	return out, nil
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id int64, status restaurant.BookingStatus) (*restaurant.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", restaurant.ErrInvalidRecord, status)
	}
	res, err := s.db.NewUpdate().
		Model((*bookingModel)(nil)).
		Set("status = ?", string(status)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, restaurant.ErrNotFound
	}
	return s.GetBooking(ctx, id)
}

func (s *Store) DeleteBooking(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, (*bookingModel)(nil), id)
}

// AppendOrderItems upserts the order row for the table and inserts the new
// lines in one transaction. The upsert locks the row, so concurrent appends
// for the same table serialise.
func (s *Store) AppendOrderItems(ctx context.Context, tableNumber int, items []restaurant.OrderItem) (*restaurant.Order, error) {
	if err := restaurant.ValidateOrderItems(tableNumber, items); err != nil {
		return nil, err
	}

	var out *restaurant.Order
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := s.now().UTC()
		o := &orderModel{
			TableNumber: tableNumber,
			Status:      string(restaurant.OrderPending),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := tx.NewInsert().
			Model(o).
			On("CONFLICT (table_number) DO UPDATE").
			Set("status = EXCLUDED.status").
			Set("updated_at = EXCLUDED.updated_at").
			Returning("id").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert order for table %d: %w", tableNumber, err)
		}

		rows := make([]*orderItemModel, 0, len(items))
		for _, it := range items {
			rows = append(rows, &orderItemModel{
				OrderID:        o.ID,
				MenuItemID:     it.MenuItemID,
				ItemName:       it.ItemName,
				Quantity:       it.Quantity,
				SpecialRequest: it.SpecialRequest,
			})
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}

		loaded, err := loadOrder(ctx, tx, "o.id = ?", o.ID)
		if err != nil {
			return err
		}
		out = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadOrder(ctx context.Context, db bun.IDB, where string, arg any) (*restaurant.Order, error) {
	m := new(orderModel)
	if err := db.NewSelect().Model(m).Relation("Items").Where(where, arg).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return m.toDomain(), nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*restaurant.Order, error) {
	return loadOrder(ctx, s.db, "o.id = ?", id)
}

func (s *Store) GetOrderByTable(ctx context.Context, tableNumber int) (*restaurant.Order, error) {
	return loadOrder(ctx, s.db, "o.table_number = ?", tableNumber)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status restaurant.OrderStatus) (*restaurant.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", restaurant.ErrInvalidRecord, status)
	}
	res, err := s.db.NewUpdate().
		Model((*orderModel)(nil)).
		Set("status = ?", string(status)).
		Set("updated_at = ?", s.now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, restaurant.ErrNotFound
	}
	return s.GetOrder(ctx, id)
}

func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*orderItemModel)(nil)).Where("order_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		return deleteByID(ctx, tx, (*orderModel)(nil), id)
	})
}

func (s *Store) CreateSpecialOffer(ctx context.Context, o *restaurant.SpecialOffer) error {
	if o == nil || strings.TrimSpace(o.Title) == "" {
		return fmt.Errorf("%w: offer title is required", restaurant.ErrInvalidRecord)
	}
	m := &offerModel{
		Title:       o.Title,
		Description: o.Description,
		PriceInfo:   o.PriceInfo,
		Validity:    o.Validity,
		Details:     o.Details,
	}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return err
	}
	o.ID = m.ID
	return nil
}

func (s *Store) ListSpecialOffers(ctx context.Context) ([]restaurant.SpecialOffer, error) {
	var rows []*offerModel
	if err := s.db.NewSelect().Model(&rows).Order("so.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]restaurant.SpecialOffer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) DeleteSpecialOffer(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, (*offerModel)(nil), id)
}

func (s *Store) CreateFAQ(ctx context.Context, f *restaurant.FAQ) error {
	if f == nil || strings.TrimSpace(f.Question) == "" {
		return fmt.Errorf("%w: faq question is required", restaurant.ErrInvalidRecord)
	}
	m := &faqModel{Question: f.Question, Answer: f.Answer}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return err
	}
	f.ID = m.ID
	return nil
}

func (s *Store) ListFAQs(ctx context.Context) ([]restaurant.FAQ, error) {
	var rows []*faqModel
	if err := s.db.NewSelect().Model(&rows).Order("f.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]restaurant.FAQ, 0, len(rows))
	for _, r := range rows {
		out = append(out, restaurant.FAQ{ID: r.ID, Question: r.Question, Answer: r.Answer})
	}
	return out, nil
}

func (s *Store) DeleteFAQ(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, (*faqModel)(nil), id)
}

func deleteByID(ctx context.Context, db bun.IDB, model any, id int64) error {
	res, err := db.NewDelete().Model(model).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return restaurant.ErrNotFound
	}
	return nil
}

type queryLogHook struct{}

func (queryLogHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (queryLogHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	l := log.Debug()
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		l = log.Warn().Err(event.Err)
	}
	l.Str("query", event.Query).
		Dur("duration", time.Since(event.StartTime)).
		Msg("sql query")
}

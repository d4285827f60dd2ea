package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/tanpawarit/restaurant-assistant/restaurant"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := Open(Config{
		Driver: DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := New(db)
	require.NoError(t, store.CreateSchema(context.Background()))
	return store
}

func TestStoreMenuRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cat, err := store.CreateCategory(ctx, "Zupy")
	require.NoError(t, err)

	zurek := &restaurant.MenuItem{
		CategoryID:  cat.ID,
		Name:        "Żurek",
		Description: "Sour rye soup",
		Price:       18,
		Allergens:   []string{"gluten", "jaja"},
	}
	require.NoError(t, store.CreateMenuItem(ctx, zurek))
	require.NotZero(t, zurek.ID)

	rosol := &restaurant.MenuItem{CategoryID: cat.ID, Name: "Rosół", Price: 15, Allergens: []string{"seler", "gluten"}}
	require.NoError(t, store.CreateMenuItem(ctx, rosol))

	cats, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Len(t, cats[0].Items, 2)
	assert.Equal(t, "Żurek", cats[0].Items[0].Name)
	assert.Equal(t, []string{"gluten", "jaja"}, cats[0].Items[0].Allergens)
	assert.Equal(t, []string{"gluten", "seler"}, cats[0].Items[1].Allergens)

	got, err := store.GetMenuItem(ctx, rosol.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.Price)

	got.Price = 16
	got.Allergens = []string{"seler"}
	require.NoError(t, store.UpdateMenuItem(ctx, got))
	got, err = store.GetMenuItem(ctx, rosol.ID)
	require.NoError(t, err)
	assert.Equal(t, 16.0, got.Price)
	assert.Equal(t, []string{"seler"}, got.Allergens)

	require.NoError(t, store.DeleteMenuItem(ctx, rosol.ID))
	_, err = store.GetMenuItem(ctx, rosol.ID)
	assert.ErrorIs(t, err, restaurant.ErrNotFound)
}

func TestStoreCreateMenuItemUnknownCategory(t *testing.T) {
	store := newTestStore(t)

	err := store.CreateMenuItem(context.Background(), &restaurant.MenuItem{CategoryID: 42, Name: "Bigos"})
	assert.ErrorIs(t, err, restaurant.ErrNotFound)
}

func TestStoreFindMenuItemsByName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cat, err := store.CreateCategory(ctx, "Pierogi")
	require.NoError(t, err)
	for _, name := range []string{"Pierogi Ruskie", "Pierogi z mięsem", "Naleśniki"} {
		require.NoError(t, store.CreateMenuItem(ctx, &restaurant.MenuItem{CategoryID: cat.ID, Name: name, Price: 25}))
	}

	got, err := store.FindMenuItemsByName(ctx, "PIEROGI", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Pierogi Ruskie", got[0].Name)

	got, err = store.FindMenuItemsByName(ctx, "sushi", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreFindMenuItemsByNameFoldsUnicode(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cat, err := store.CreateCategory(ctx, "Zupy")
	require.NoError(t, err)
	for _, name := range []string{"Żurek", "Rosół", "Barszcz"} {
		require.NoError(t, store.CreateMenuItem(ctx, &restaurant.MenuItem{CategoryID: cat.ID, Name: name, Price: 18}))
	}

	for _, query := range []string{"żurek", "Żurek", "ŻUREK", "urek"} {
		got, err := store.FindMenuItemsByName(ctx, query, 5)
		require.NoError(t, err)
		require.Len(t, got, 1, "query %q", query)
		assert.Equal(t, "Żurek", got[0].Name)
	}

	got, err := store.FindMenuItemsByName(ctx, "ROSÓŁ", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rosół", got[0].Name)

	for _, query := range []string{"_", "%", "z%k"} {
		got, err := store.FindMenuItemsByName(ctx, query, 5)
		require.NoError(t, err)
		assert.Empty(t, got, "query %q", query)
	}

	got, err = store.FindMenuItemsByName(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStoreAppendOrderItems(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.AppendOrderItems(ctx, 3, []restaurant.OrderItem{{ItemName: "Pierogi Ruskie", Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, first.Items, 1)

	_, err = store.UpdateOrderStatus(ctx, first.ID, restaurant.OrderServed)
	require.NoError(t, err)

	second, err := store.AppendOrderItems(ctx, 3, []restaurant.OrderItem{{ItemName: "Kompot", Quantity: 1, SpecialRequest: "no ice"}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, restaurant.OrderPending, second.Status)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "Pierogi Ruskie", second.Items[0].ItemName)
	assert.Equal(t, "no ice", second.Items[1].SpecialRequest)

	byTable, err := store.GetOrderByTable(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, byTable.ItemCount())

	_, err = store.GetOrderByTable(ctx, 4)
	assert.ErrorIs(t, err, restaurant.ErrNotFound)
}

func TestStoreAppendOrderItemsConcurrent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.AppendOrderItems(ctx, 7, []restaurant.OrderItem{{ItemName: fmt.Sprintf("item-%d", i), Quantity: 1}})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	order, err := store.GetOrderByTable(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, order.Items, workers)
}

func TestStoreBookings(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	b := &restaurant.Booking{
		CustomerName:  "Kowalski",
		CustomerPhone: "600123456",
		BookingDate:   "2026-10-18",
		BookingTime:   "19:00",
		PartySize:     4,
	}
	require.NoError(t, store.CreateBooking(ctx, b))
	require.NotZero(t, b.ID)
	assert.Equal(t, restaurant.BookingPending, b.Status)

	updated, err := store.UpdateBookingStatus(ctx, b.ID, restaurant.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, restaurant.BookingConfirmed, updated.Status)

	list, err := store.ListBookingsByDate(ctx, "2026-10-18")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Kowalski", list[0].CustomerName)

	_, err = store.UpdateBookingStatus(ctx, 999, restaurant.BookingCancelled)
	assert.ErrorIs(t, err, restaurant.ErrNotFound)

	err = store.CreateBooking(ctx, &restaurant.Booking{CustomerName: "x", CustomerPhone: "1", BookingDate: "tomorrow", BookingTime: "19:00", PartySize: 1})
	assert.ErrorIs(t, err, restaurant.ErrInvalidRecord)
}

func TestStoreInfoOffersFAQ(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetInfo(ctx)
	assert.ErrorIs(t, err, restaurant.ErrNotFound)

	require.NoError(t, store.SaveInfo(ctx, &restaurant.Info{Name: "Poligon Smaków", ParkingAvailable: true}))
	require.NoError(t, store.SaveInfo(ctx, &restaurant.Info{Name: "Poligon Smaków WAT", ParkingAvailable: true}))
	info, err := store.GetInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Poligon Smaków WAT", info.Name)
	assert.True(t, info.ParkingAvailable)

	require.NoError(t, store.CreateSpecialOffer(ctx, &restaurant.SpecialOffer{Title: "Lunch dnia", PriceInfo: "29 PLN"}))
	offers, err := store.ListSpecialOffers(ctx)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	require.NoError(t, store.DeleteSpecialOffer(ctx, offers[0].ID))
	assert.ErrorIs(t, store.DeleteSpecialOffer(ctx, offers[0].ID), restaurant.ErrNotFound)

	require.NoError(t, store.CreateFAQ(ctx, &restaurant.FAQ{Question: "Do you have vegan options?", Answer: "Yes."}))
	faqs, err := store.ListFAQs(ctx)
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	assert.Equal(t, "Yes.", faqs[0].Answer)
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })

	return New(bun.NewDB(sqldb, pgdialect.New())), mock
}

func TestStoreBackendErrorIsNotNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("connection refused")
	mock.ExpectQuery(`SELECT .* FROM "orders"`).WillReturnError(boom)

	_, err := store.GetOrderByTable(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, restaurant.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreFindMenuItemsByNameEscapesWildcardsOnPostgres(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .* FROM "menu_items" AS "mi" WHERE \(mi\.name ILIKE '%50\\%\\_off%' ESCAPE '\\'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := store.FindMenuItemsByName(context.Background(), "50%_OFF", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreEmptyResultIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetBooking(context.Background(), 12)
	assert.ErrorIs(t, err, restaurant.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

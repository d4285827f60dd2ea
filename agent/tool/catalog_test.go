package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/restaurant-assistant/agent/knowledge"
	"github.com/tanpawarit/restaurant-assistant/restaurant"
)

var anchor = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type fakeKnowledge struct {
	text string
	err  error
}

func (k fakeKnowledge) Query(context.Context, string) (string, error) {
	return k.text, k.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(_ context.Context, event string, _ any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

type brokenStore struct {
	*restaurant.MemoryStore
	panics bool
}

func (s brokenStore) AppendOrderItems(context.Context, int, []restaurant.OrderItem) (*restaurant.Order, error) {
	if s.panics {
		panic("nil map write")
	}
	return nil, errors.New("pq: connection reset by peer")
}

func (s brokenStore) CreateBooking(context.Context, *restaurant.Booking) error {
	return errors.New("pq: connection reset by peer")
}

func newTestCatalog(t *testing.T, store restaurant.Store, notifier *recordingNotifier) *Catalog {
	t.Helper()
	deps := Deps{
		Store:     store,
		Knowledge: fakeKnowledge{text: "## Menu\n*   **Żurek**"},
		Now:       func() time.Time { return anchor },
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	c, err := NewCatalog(deps)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return c
}

func seedMenu(t *testing.T, store *restaurant.MemoryStore, names ...string) []restaurant.MenuItem {
	t.Helper()
	ctx := context.Background()
	cat, err := store.CreateCategory(ctx, "Mains")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	out := make([]restaurant.MenuItem, 0, len(names))
	for i, name := range names {
		it := &restaurant.MenuItem{CategoryID: cat.ID, Name: name, Price: float64(20 + i)}
		if err := store.CreateMenuItem(ctx, it); err != nil {
			t.Fatalf("CreateMenuItem() error = %v", err)
		}
		out = append(out, *it)
	}
	return out
}

func TestInfosExportSchemas(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t, restaurant.NewMemoryStore(), nil)
	infos := c.Infos(PlaceOrder, "missing", QueryKnowledge)
	if len(infos) != 2 {
		t.Fatalf("expected 2 tool infos, got %d", len(infos))
	}
	if infos[0].Name != PlaceOrder || infos[1].Name != QueryKnowledge {
		t.Fatalf("unexpected tool order: %s, %s", infos[0].Name, infos[1].Name)
	}

	params := paramsFromSchema(placeOrderSchema)
	table := params["table_number"]
	if table == nil || table.Type != schema.Integer || !table.Required {
		t.Fatalf("unexpected table_number param: %#v", table)
	}
	items := params["items"]
	if items == nil || items.Type != schema.Array || items.ElemInfo == nil || items.ElemInfo.Type != schema.Object {
		t.Fatalf("unexpected items param: %#v", items)
	}
	if q := items.ElemInfo.SubParams["quantity"]; q == nil || !q.Required {
		t.Fatalf("quantity should be required: %#v", q)
	}
	if len(c.Names()) != 6 {
		t.Fatalf("expected 6 tools, got %v", c.Names())
	}
}

func TestValidateRejectsBadOrderArguments(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t, restaurant.NewMemoryStore(), nil)
	cases := map[string]string{
		"zero quantity":   `{"table_number": 3, "items": [{"item_name": "Żurek", "quantity": 0}]}`,
		"missing table":   `{"items": [{"item_name": "Żurek", "quantity": 1}]}`,
		"no items":        `{"table_number": 3, "items": []}`,
		"no name or id":   `{"table_number": 3, "items": [{"quantity": 1}]}`,
		"not json":        `{"table_number": 3,`,
		"string quantity": `{"table_number": 3, "items": [{"item_name": "Żurek", "quantity": "two"}]}`,
	}
	for name, raw := range cases {
		err := c.Validate(PlaceOrder, raw)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", name, err)
		}
	}

	if err := c.Validate(PlaceOrder, `{"table_number": 3, "items": [{"menu_item_id": 7, "quantity": 2}]}`); err != nil {
		t.Fatalf("valid arguments rejected: %v", err)
	}
}

func TestInvokeInvalidArgumentsSkipsHandler(t *testing.T) {
	t.Parallel()

	store := restaurant.NewMemoryStore()
	c := newTestCatalog(t, store, nil)
	res := c.Invoke(context.Background(), PlaceOrder, `{"table_number": 3, "items": [{"item_name": "Żurek", "quantity": 0}]}`)
	if res.Kind != OutcomeInvalid {
		t.Fatalf("kind = %s, want invalid", res.Kind)
	}
	if _, err := store.GetOrderByTable(context.Background(), 3); !errors.Is(err, restaurant.ErrNotFound) {
		t.Fatalf("order must not be created, got err=%v", err)
	}
}

func TestPlaceOrderAppends(t *testing.T) {
	t.Parallel()

	store := restaurant.NewMemoryStore()
	notifier := &recordingNotifier{}
	c := newTestCatalog(t, store, notifier)
	ctx := context.Background()

	first := c.Invoke(ctx, PlaceOrder, `{"table_number": 4, "items": [{"item_name": "Pierogi Ruskie", "quantity": 2}]}`)
	if first.Kind != OutcomeSuccess {
		t.Fatalf("first order failed: %+v", first)
	}
	if !strings.Contains(first.Text, "Order placed successfully for table 4") || !strings.Contains(first.Text, "2x Pierogi Ruskie") {
		t.Fatalf("unexpected confirmation: %s", first.Text)
	}

	second := c.Invoke(ctx, PlaceOrder, `{"table_number": 4, "items": [{"item_name": "Kompot", "quantity": 1, "special_request": "no ice"}]}`)
	if !strings.Contains(second.Text, "3 items in total") {
		t.Fatalf("running count missing: %s", second.Text)
	}

	status := c.Invoke(ctx, GetOrderStatus, `{"table_number": 4}`)
	want := "Order for table 4 is pending. Items: 2x Pierogi Ruskie, 1x Kompot (no ice)"
	if status.Text != want {
		t.Fatalf("status text = %q, want %q", status.Text, want)
	}
	if len(notifier.events) != 2 || notifier.events[0] != EventOrderUpdated {
		t.Fatalf("unexpected notifications: %v", notifier.events)
	}
}

func TestPlaceOrderResolvesMenuItemID(t *testing.T) {
	t.Parallel()

	store := restaurant.NewMemoryStore()
	items := seedMenu(t, store, "Żurek")
	c := newTestCatalog(t, store, nil)

	res := c.Invoke(context.Background(), PlaceOrder, fmt.Sprintf(`{"table_number": 1, "items": [{"menu_item_id": %d, "quantity": 1}]}`, items[0].ID))
	if res.Kind != OutcomeSuccess || !strings.Contains(res.Text, "1x Żurek") {
		t.Fatalf("unexpected result: %+v", res)
	}

	missing := c.Invoke(context.Background(), PlaceOrder, `{"table_number": 1, "items": [{"menu_item_id": 999, "quantity": 1}]}`)
	if missing.Kind != OutcomeInvalid || !strings.Contains(missing.Text, "no menu item with ID 999") {
		t.Fatalf("unexpected result for unknown id: %+v", missing)
	}
}

func TestConcurrentPlaceOrderKeepsEveryItem(t *testing.T) {
	t.Parallel()

	store := restaurant.NewMemoryStore()
	c := newTestCatalog(t, store, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw := fmt.Sprintf(`{"table_number": 9, "items": [{"item_name": "Dish %d", "quantity": 1}]}`, i)
			if res := c.Invoke(context.Background(), PlaceOrder, raw); res.Kind != OutcomeSuccess {
				t.Errorf("order %d failed: %+v", i, res)
			}
		}(i)
	}
	wg.Wait()

	order, err := store.GetOrderByTable(context.Background(), 9)
	if err != nil {
		t.Fatalf("GetOrderByTable() error = %v", err)
	}
	if len(order.Items) != 20 {
		t.Fatalf("expected 20 items, got %d", len(order.Items))
	}
}

func TestGetOrderStatusNotFound(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t, restaurant.NewMemoryStore(), nil)
	res := c.Invoke(context.Background(), GetOrderStatus, `{"table_number": 12}`)
	if res.Kind != OutcomeNotFound || res.Text != "No active order found for table 12." {
		t.Fatalf("unexpected result: %+v", res)
	}
	byID := c.Invoke(context.Background(), GetOrderStatus, `{"order_id": 77}`)
	if byID.Kind != OutcomeNotFound || byID.Text != "No order found with ID 77." {
		t.Fatalf("unexpected result: %+v", byID)
	}
}

func TestFindMenuItemByName(t *testing.T) {
	t.Parallel()

	store := restaurant.NewMemoryStore()
	items := seedMenu(t, store,
		"Pierogi Ruskie", "Żurek", "Kompot Jabłkowy", "Kompot Wiśniowy", "Kompot Truskawkowy",
		"Kompot Śliwkowy", "Kompot Malinowy", "Kompot Porzeczkowy",
	)
	c := newTestCatalog(t, store, nil)
	ctx := context.Background()

	one := c.Invoke(ctx, FindMenuItem, `{"query": "pierogi"}`)
	want := fmt.Sprintf("Found 1 menu item: ID %d, Pierogi Ruskie, price 20.00 PLN.", items[0].ID)
	if one.Text != want {
		t.Fatalf("single match = %q, want %q", one.Text, want)
	}

	none := c.Invoke(ctx, FindMenuItem, `{"query": "sushi"}`)
	if none.Kind != OutcomeNotFound || !strings.Contains(none.Text, "rephrase") {
		t.Fatalf("unexpected zero-match result: %+v", none)
	}

	accented := c.Invoke(ctx, FindMenuItem, `{"query": "WIŚ"}`)
	if accented.Kind != OutcomeSuccess || !strings.Contains(accented.Text, "Kompot Wiśniowy") {
		t.Fatalf("unexpected result: %+v", accented)
	}

	pair := c.Invoke(ctx, FindMenuItem, `{"query": "rus"}`)
	wantPair := fmt.Sprintf("1. ID %d: Pierogi Ruskie (20.00 PLN)\n2. ID %d: Kompot Truskawkowy", items[0].ID, items[4].ID)
	if !strings.Contains(pair.Text, wantPair) {
		t.Fatalf("two matches should list both in id order:\n%s", pair.Text)
	}

	cases := []struct {
		query string
		want  int
	}{
		{"rus", 2},
		{"kowy", 4},
		{"kompot", 5},
	}
	for _, tc := range cases {
		res := c.Invoke(ctx, FindMenuItem, fmt.Sprintf(`{"query": %q}`, tc.query))
		if !strings.HasPrefix(res.Text, fmt.Sprintf("Found %d menu items", tc.want)) {
			t.Fatalf("query %q: expected %d matches: %s", tc.query, tc.want, res.Text)
		}
		if got := listedItems(res.Text); got != tc.want {
			t.Fatalf("query %q: expected %d listed items, got %d:\n%s", tc.query, tc.want, got, res.Text)
		}
	}
}

func listedItems(text string) int {
	n := 0
	for _, l := range strings.Split(text, "\n") {
		if strings.Contains(l, ". ID ") {
			n++
		}
	}
	return n
}

func TestConvertDate(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t, restaurant.NewMemoryStore(), nil)
	ctx := context.Background()

	if res := c.Invoke(ctx, ConvertDate, `{"date_expression": ""}`); res.Text != "null" {
		t.Fatalf("empty expression = %q, want null", res.Text)
	}
	if res := c.Invoke(ctx, ConvertDate, `{"date_expression": "tomorrow"}`); res.Text != "2026-10-18" {
		t.Fatalf("tomorrow = %q, want 2026-10-18", res.Text)
	}
	if res := c.Invoke(ctx, ConvertDate, `{"date_expression": "pojutrze"}`); res.Text != "2026-10-19" {
		t.Fatalf("pojutrze = %q, want 2026-10-19", res.Text)
	}
}

func TestMakeReservation(t *testing.T) {
	t.Parallel()

	store := restaurant.NewMemoryStore()
	notifier := &recordingNotifier{}
	c := newTestCatalog(t, store, notifier)

	res := c.Invoke(context.Background(), MakeReservation, `{
		"customer_name": "Kowalski",
		"customer_phone": "600123456",
		"booking_date": "2026-10-18",
		"booking_time": "19:00",
		"party_size": 4
	}`)
	if res.Kind != OutcomeSuccess {
		t.Fatalf("reservation failed: %+v", res)
	}
	for _, want := range []string{"Reservation confirmed for Kowalski on 2026-10-18 at 19:00 for 4 guests.", "Booking ID: 1.", "Status: pending."} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("confirmation missing %q: %s", want, res.Text)
		}
	}
	bookings, err := store.ListBookingsByDate(context.Background(), "2026-10-18")
	if err != nil || len(bookings) != 1 {
		t.Fatalf("expected one stored booking, got %v (err=%v)", bookings, err)
	}
	if len(notifier.events) != 1 || notifier.events[0] != EventBookingCreated {
		t.Fatalf("unexpected notifications: %v", notifier.events)
	}

	bad := c.Invoke(context.Background(), MakeReservation, `{
		"customer_name": "Kowalski",
		"customer_phone": "600123456",
		"booking_date": "2026-13-45",
		"booking_time": "19:00",
		"party_size": 4
	}`)
	if bad.Kind != OutcomeInvalid || !strings.Contains(bad.Text, "YYYY-MM-DD") {
		t.Fatalf("unexpected result for impossible date: %+v", bad)
	}
}

func TestBackendErrorsBecomeApologies(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t, brokenStore{MemoryStore: restaurant.NewMemoryStore()}, nil)
	order := c.Invoke(context.Background(), PlaceOrder, `{"table_number": 2, "items": [{"item_name": "Żurek", "quantity": 1}]}`)
	if order.Kind != OutcomeBackendError || strings.Contains(order.Text, "pq:") {
		t.Fatalf("raw error leaked: %+v", order)
	}
	booking := c.Invoke(context.Background(), MakeReservation, `{"customer_name": "A", "customer_phone": "1", "booking_date": "2026-10-18", "booking_time": "18:00", "party_size": 2}`)
	if booking.Text != "Sorry, I encountered an error while trying to make your reservation. Please try again later." {
		t.Fatalf("unexpected apology: %q", booking.Text)
	}
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t, brokenStore{MemoryStore: restaurant.NewMemoryStore(), panics: true}, nil)
	res := c.Invoke(context.Background(), PlaceOrder, `{"table_number": 2, "items": [{"item_name": "Żurek", "quantity": 1}]}`)
	if res.Kind != OutcomeBackendError || strings.Contains(res.Text, "nil map") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestQueryKnowledge(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t, restaurant.NewMemoryStore(), nil)
	res := c.Invoke(context.Background(), QueryKnowledge, `{"query": "soups"}`)
	if res.Kind != OutcomeSuccess || !strings.HasPrefix(res.Text, "Information from the restaurant database:\n## Menu") {
		t.Fatalf("unexpected result: %+v", res)
	}

	empty, err := NewCatalog(Deps{Store: restaurant.NewMemoryStore(), Knowledge: fakeKnowledge{err: knowledge.ErrEmpty}})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	res = empty.Invoke(context.Background(), QueryKnowledge, `{"query": "soups"}`)
	if res.Kind != OutcomeNotFound || !strings.Contains(res.Text, "currently unavailable") {
		t.Fatalf("unexpected result: %+v", res)
	}

	failing, err := NewCatalog(Deps{Store: restaurant.NewMemoryStore(), Knowledge: fakeKnowledge{err: errors.New("dial tcp: refused")}})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	res = failing.Invoke(context.Background(), QueryKnowledge, `{"query": "soups"}`)
	if res.Kind != OutcomeBackendError || strings.Contains(res.Text, "dial tcp") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

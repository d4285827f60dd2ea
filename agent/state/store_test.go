package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
)

func sampleConversation() *Conversation {
	c := NewConversation("session-1", time.Date(2026, 10, 17, 18, 0, 0, 0, time.UTC))
	c.Advance([]*schema.Message{
		schema.UserMessage("One żurek for table 2"),
		schema.AssistantMessage("", []schema.ToolCall{{
			ID:       "c1",
			Type:     "function",
			Function: schema.FunctionCall{Name: "place_order", Arguments: `{"table_number":2}`},
		}}),
		schema.ToolMessage("Order placed successfully for table 2.", "c1"),
		schema.AssistantMessage("Your żurek is on its way.", nil),
	}, contractx.AgentOrder, time.Date(2026, 10, 17, 18, 1, 0, 0, time.UTC))
	return c
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisStore(client, WithTTL(time.Hour))
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	return mr, store
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	mr, store := setupRedis(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleConversation()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !mr.Exists(defaultStoreKeyPrefix + "session-1") {
		t.Fatalf("expected key %q in redis", defaultStoreKeyPrefix+"session-1")
	}
	if ttl := mr.TTL(defaultStoreKeyPrefix + "session-1"); ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}

	got, err := store.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Agent != contractx.AgentOrder || got.Turns != 1 || len(got.History) != 4 {
		t.Fatalf("unexpected conversation: %+v", got)
	}
	call := got.History[1].ToolCalls
	if len(call) != 1 || call[0].Function.Name != "place_order" {
		t.Fatalf("tool call lost in round trip: %#v", got.History[1])
	}
	if got.History[2].Role != schema.Tool || got.History[2].ToolCallID != "c1" {
		t.Fatalf("tool message lost in round trip: %#v", got.History[2])
	}

	if err := store.Delete(ctx, "session-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "session-1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound after delete, got %v", err)
	}
}

func TestRedisStoreExpires(t *testing.T) {
	t.Parallel()

	mr, store := setupRedis(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleConversation()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := store.Load(ctx, "session-1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound after ttl, got %v", err)
	}
}

func TestRedisStoreRejectsCorruptPayload(t *testing.T) {
	t.Parallel()

	mr, store := setupRedis(t)
	if err := mr.Set(defaultStoreKeyPrefix+"broken", "{not json"); err != nil {
		t.Fatalf("seed redis: %v", err)
	}
	if _, err := store.Load(context.Background(), "broken"); err == nil {
		t.Fatalf("expected error for corrupt payload")
	}
}

func TestStoresRejectEmptySession(t *testing.T) {
	t.Parallel()

	_, redisStore := setupRedis(t)
	for _, store := range []Store{NewMemoryStore(), redisStore} {
		if _, err := store.Load(context.Background(), "  "); !errors.Is(err, ErrInvalidSession) {
			t.Fatalf("Load() error = %v, want ErrInvalidSession", err)
		}
		if err := store.Save(context.Background(), &Conversation{}); !errors.Is(err, ErrInvalidSession) {
			t.Fatalf("Save() error = %v, want ErrInvalidSession", err)
		}
		if err := store.Save(context.Background(), nil); !errors.Is(err, ErrNilConversation) {
			t.Fatalf("Save(nil) error = %v, want ErrNilConversation", err)
		}
	}
}

func TestMemoryStoreIsolatesCopies(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	c := sampleConversation()
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	c.History = append(c.History, schema.UserMessage("not saved"))

	got, err := store.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.History) != 4 {
		t.Fatalf("stored history changed through caller copy: %d", len(got.History))
	}
	if err := store.Delete(ctx, "session-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "session-1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
}

func TestTrimHistoryStartsAtUserMessage(t *testing.T) {
	t.Parallel()

	history := sampleConversation().History
	history = append(history,
		schema.UserMessage("And a table for tomorrow?"),
		schema.AssistantMessage("For how many guests?", nil),
	)

	got := TrimHistory(history, 4)
	if len(got) != 2 || got[0].Role != schema.User {
		t.Fatalf("unexpected window: %d messages starting with %s", len(got), got[0].Role)
	}
	if all := TrimHistory(history, 0); len(all) != len(history) {
		t.Fatalf("limit 0 should keep everything")
	}
	if small := TrimHistory(history[:2], 10); len(small) != 2 {
		t.Fatalf("short history should be unchanged")
	}
}

func TestTrimHistoryKeepsOversizedLatestTurn(t *testing.T) {
	t.Parallel()

	history := []*schema.Message{
		schema.UserMessage("Hello"),
		schema.AssistantMessage("Hi, how can I help?", nil),
	}
	history = append(history, sampleConversation().History...)

	got := TrimHistory(history, 2)
	if len(got) != 4 || got[0].Role != schema.User || got[0].Content != "One żurek for table 2" {
		t.Fatalf("expected the whole latest turn, got %d messages", len(got))
	}
	if got[3].Content != "Your żurek is on its way." {
		t.Fatalf("window should end at the newest message, got %q", got[3].Content)
	}
}

func TestConversationCurrentAgent(t *testing.T) {
	t.Parallel()

	var nilConv *Conversation
	if nilConv.CurrentAgent() != contractx.AgentTriage {
		t.Fatalf("nil conversation should start on triage")
	}
	if sampleConversation().CurrentAgent() != contractx.AgentOrder {
		t.Fatalf("conversation should resume on order agent")
	}
}

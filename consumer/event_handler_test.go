package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"catalog-engine/domain"
)

// mockRebuilder implements Rebuilder for testing.
type mockRebuilder struct {
	mu    sync.Mutex
	calls int
	stats domain.RebuildStats
	err   error
}

func (m *mockRebuilder) Rebuild(ctx context.Context) (domain.RebuildStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.stats, m.err
}

func (m *mockRebuilder) rebuilds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ Rebuilder = (*mockRebuilder)(nil)

func TestReindexEventHandler_HandleEvent_CatalogImported(t *testing.T) {
	rb := &mockRebuilder{stats: domain.RebuildStats{Products: 10}}
	handler := NewReindexEventHandler(rb, slog.Default())
	defer handler.Stop()

	payload, _ := json.Marshal(CatalogImportedPayload{Source: "feed", Products: 10})

	err := handler.HandleEvent(context.Background(), Event{
		EventType: "CatalogImported",
		EventID:   "evt-1",
		Payload:   payload,
	})
	if err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	// Stop runs the pending rebuild without waiting for the debounce timer
	handler.Stop()

	if got := rb.rebuilds(); got != 1 {
		t.Errorf("expected 1 rebuild, got %d", got)
	}
}

func TestReindexEventHandler_HandleEvent_ReindexRequested(t *testing.T) {
	rb := &mockRebuilder{}
	handler := NewReindexEventHandler(rb, slog.Default())
	defer handler.Stop()

	err := handler.HandleEvent(context.Background(), Event{
		EventType: "ReindexRequested",
		EventID:   "evt-2",
		Source:    "admin",
	})
	if err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	handler.Stop()

	if got := rb.rebuilds(); got != 1 {
		t.Errorf("expected 1 rebuild, got %d", got)
	}
}

func TestReindexEventHandler_HandleEvent_UnknownType(t *testing.T) {
	rb := &mockRebuilder{}
	handler := NewReindexEventHandler(rb, slog.Default())
	defer handler.Stop()

	err := handler.HandleEvent(context.Background(), Event{
		EventType: "UnknownEvent",
		EventID:   "evt-3",
	})
	if err != nil {
		t.Fatalf("HandleEvent() should return nil for unknown events, got %v", err)
	}

	handler.Stop()

	if got := rb.rebuilds(); got != 0 {
		t.Errorf("expected no rebuilds for unknown event, got %d", got)
	}
}

func TestReindexEventHandler_HandleEvent_InvalidPayload(t *testing.T) {
	rb := &mockRebuilder{}
	handler := NewReindexEventHandler(rb, slog.Default())
	defer handler.Stop()

	err := handler.HandleEvent(context.Background(), Event{
		EventType: "CatalogImported",
		EventID:   "evt-4",
		Payload:   json.RawMessage(`{invalid json}`),
	})
	if err == nil {
		t.Fatal("HandleEvent() should return error for invalid payload")
	}
}

func TestReindexEventHandler_CoalescesBursts(t *testing.T) {
	rb := &mockRebuilder{}
	handler := NewReindexEventHandler(rb, slog.Default())
	defer handler.Stop()

	// A burst of change events before the debounce timer fires should
	// collapse into a single rebuild.
	for range 5 {
		payload, _ := json.Marshal(CatalogImportedPayload{Source: "feed"})
		_ = handler.HandleEvent(context.Background(), Event{
			EventType: "CatalogImported",
			EventID:   "evt-burst",
			Payload:   payload,
		})
	}

	handler.Stop()

	if got := rb.rebuilds(); got != 1 {
		t.Errorf("expected 1 coalesced rebuild, got %d", got)
	}
}

func TestReindexEventHandler_RebuildErrorDoesNotPanic(t *testing.T) {
	rb := &mockRebuilder{err: errors.New("store down")}
	handler := NewReindexEventHandler(rb, slog.Default())

	_ = handler.HandleEvent(context.Background(), Event{
		EventType: "ReindexRequested",
		EventID:   "evt-5",
	})

	handler.Stop()

	if got := rb.rebuilds(); got != 1 {
		t.Errorf("expected rebuild to be attempted once, got %d", got)
	}
}

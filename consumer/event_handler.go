package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"catalog-engine/domain"
)

const reindexDebounce = 2 * time.Second

// Rebuilder triggers a facet index rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context) (domain.RebuildStats, error)
}

// CatalogImportedPayload represents the payload for CatalogImported events.
type CatalogImportedPayload struct {
	Source     string `json:"source"`
	Products   int    `json:"products"`
	Categories int    `json:"categories"`
}

// ReindexEventHandler turns catalog change events into facet index
// rebuilds. Because a rebuild always covers the whole catalog, a burst
// of change events is coalesced: the first event arms a debounce timer
// and every further one before it fires is absorbed into the same
// rebuild.
type ReindexEventHandler struct {
	rebuilder Rebuilder
	logger    *slog.Logger

	mu      sync.Mutex
	pending int
	timer   *time.Timer
	ctx     context.Context
	cancel  context.CancelFunc
	rebuilt chan struct{} // signalled after each rebuild for testing
}

// NewReindexEventHandler creates a new ReindexEventHandler.
func NewReindexEventHandler(rebuilder Rebuilder, logger *slog.Logger) *ReindexEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ReindexEventHandler{
		rebuilder: rebuilder,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		rebuilt:   make(chan struct{}, 1),
	}
}

// Stop cancels the debounce timer and runs any pending rebuild.
func (h *ReindexEventHandler) Stop() {
	h.cancel()
	h.mu.Lock()
	if h.timer != nil {
		h.timer.Stop()
	}
	h.mu.Unlock()
	h.rebuildIfPending()
}

// HandleEvent processes a single event. Catalog change events schedule
// a rebuild; unknown event types are skipped so unrelated producers on
// the same stream do not poison the group.
func (h *ReindexEventHandler) HandleEvent(ctx context.Context, event Event) error {
	switch event.EventType {
	case "CatalogImported":
		return h.handleCatalogImported(event)
	case "ReindexRequested":
		h.logger.Info("reindex requested", "source", event.Source, "event_id", event.EventID)
		h.schedule()
		return nil
	default:
		h.logger.Warn("unknown event type, skipping",
			"event_type", event.EventType,
			"event_id", event.EventID,
		)
		return nil
	}
}

func (h *ReindexEventHandler) handleCatalogImported(event Event) error {
	var payload CatalogImportedPayload
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			h.logger.Error("failed to unmarshal CatalogImported payload",
				"event_id", event.EventID,
				"error", err,
			)
			return err
		}
	}

	h.logger.Info("catalog imported, scheduling rebuild",
		"source", payload.Source,
		"products", payload.Products,
	)

	h.schedule()
	return nil
}

// schedule marks a rebuild pending and arms the debounce timer on the
// first event of a burst.
func (h *ReindexEventHandler) schedule() {
	h.mu.Lock()
	h.pending++
	if h.pending == 1 {
		h.timer = time.AfterFunc(reindexDebounce, func() {
			h.rebuildIfPending()
		})
	}
	h.mu.Unlock()
}

// rebuildIfPending performs one rebuild covering all events scheduled
// since the last rebuild.
func (h *ReindexEventHandler) rebuildIfPending() {
	h.mu.Lock()
	if h.pending == 0 {
		h.mu.Unlock()
		return
	}
	coalesced := h.pending
	h.pending = 0
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.mu.Unlock()

	h.logger.Info("rebuilding facet index", "coalesced_events", coalesced)

	stats, err := h.rebuilder.Rebuild(h.ctx)
	if err != nil {
		h.logger.Error("event-driven rebuild failed", "error", err)
		return
	}

	h.logger.Info("event-driven rebuild finished",
		"products", stats.Products,
		"categories", stats.Categories,
		"errors", stats.Errors,
	)

	// Signal completion (non-blocking for tests)
	select {
	case h.rebuilt <- struct{}{}:
	default:
	}
}

package memory

import (
	"context"
	"sync"

	"bidmarket/internal/domain"
)

// StateCache is an in-process domain.ListingStateCache. Used in tests and as
// a fallback when Redis is not configured.
type StateCache struct {
	mu   sync.RWMutex
	open map[string]bool
}

func NewStateCache() *StateCache {
	return &StateCache{open: make(map[string]bool)}
}

func (c *StateCache) SetListingOpen(ctx context.Context, listingID string, open bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.open[listingID] = open
	return nil
}

func (c *StateCache) GetListingOpen(ctx context.Context, listingID string) (bool, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	open, known := c.open[listingID]
	return open, known, nil
}

// EventRecorder is a domain.EventPublisher that retains published events.
// Intended for tests.
type EventRecorder struct {
	mu     sync.Mutex
	events []domain.AuctionEvent
}

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

func (r *EventRecorder) PublishAuctionEvent(ctx context.Context, event *domain.AuctionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, *event)
	return nil
}

func (r *EventRecorder) Events() []domain.AuctionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]domain.AuctionEvent(nil), r.events...)
}

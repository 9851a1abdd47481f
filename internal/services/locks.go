package services

import "sync"

// ListingLocks hands out one mutex per listing id. Bid admission and the
// resolution/cancellation transition of a listing must hold the same lock, so
// a single instance is shared between BidService and ResolverService.
//
// Locks are never held across calls to other collaborators' I/O except the
// listing's own repository operations.
type ListingLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewListingLocks() *ListingLocks {
	return &ListingLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the listing and returns its unlock function.
func (l *ListingLocks) Lock(listingID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[listingID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[listingID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

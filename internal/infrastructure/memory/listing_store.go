package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bidmarket/internal/domain"
)

// ListingStore is a concurrency-safe in-memory domain.ListingRepository.
type ListingStore struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing
}

func NewListingStore() *ListingStore {
	return &ListingStore{listings: make(map[string]*domain.Listing)}
}

func (s *ListingStore) CreateListing(ctx context.Context, listing *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *listing
	s.listings[listing.ID] = &cp
	return nil
}

func (s *ListingStore) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[listingID]
	if !ok {
		return nil, fmt.Errorf("get listing %s: %w", listingID, domain.ErrNotFound)
	}
	cp := *listing
	return &cp, nil
}

func (s *ListingStore) CloseIfOpen(ctx context.Context, listingID string, closedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[listingID]
	if !ok {
		return false, fmt.Errorf("close listing %s: %w", listingID, domain.ErrNotFound)
	}
	if !listing.Open {
		return false, nil
	}
	listing.Open = false
	listing.UpdatedAt = closedAt
	return true, nil
}

// AdmitPrice arbitrates under the store lock the way the conditional UPDATE
// does in MySQL: the raise succeeds iff the listing is open and the price
// strictly exceeds the current highest.
func (s *ListingStore) AdmitPrice(ctx context.Context, listingID string, price int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[listingID]
	if !ok {
		return false, fmt.Errorf("admit price on listing %s: %w", listingID, domain.ErrNotFound)
	}
	if !listing.Open || price <= listing.HighestPrice {
		return false, nil
	}
	listing.HighestPrice = price
	return true, nil
}

func (s *ListingStore) ListOpenBySeller(ctx context.Context, sellerID string) ([]*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Listing
	for _, l := range s.listings {
		if l.SellerID == sellerID && l.Open {
			cp := *l
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *ListingStore) ListExpiredOpen(ctx context.Context, before time.Time) ([]*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Listing
	for _, l := range s.listings {
		if l.Open && !l.ExpireAt.After(before) {
			cp := *l
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *ListingStore) ListBySeller(ctx context.Context, sellerID string, page domain.Page) ([]*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Listing
	for _, l := range s.listings {
		if l.SellerID == sellerID {
			cp := *l
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, page), nil
}

func paginate[T any](items []T, page domain.Page) []T {
	if page.Offset >= len(items) {
		return nil
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bidmarket/internal/domain"
)

// BidStore is a concurrency-safe in-memory domain.BidRepository.
type BidStore struct {
	mu   sync.RWMutex
	bids map[string][]domain.Bid // key: listingID
}

func NewBidStore() *BidStore {
	return &BidStore{bids: make(map[string][]domain.Bid)}
}

func (s *BidStore) InsertBid(ctx context.Context, bid *domain.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bids[bid.ListingID] = append(s.bids[bid.ListingID], *bid)
	return nil
}

func (s *BidStore) HighestByListing(ctx context.Context, listingID string) (*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bids := s.bids[listingID]
	if len(bids) == 0 {
		return nil, fmt.Errorf("highest bid for listing %s: %w", listingID, domain.ErrNoBids)
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Price > highest.Price || (b.Price == highest.Price && b.CreatedAt.Before(highest.CreatedAt)) {
			highest = b
		}
	}
	return &highest, nil
}

func (s *BidStore) ListByListing(ctx context.Context, listingID string) ([]*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bids := s.bids[listingID]
	result := make([]*domain.Bid, 0, len(bids))
	for i := range bids {
		cp := bids[i]
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *BidStore) ListByBidder(ctx context.Context, bidderID string, page domain.Page) ([]*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Bid
	for _, bids := range s.bids {
		for i := range bids {
			if bids[i].BidderID == bidderID {
				cp := bids[i]
				result = append(result, &cp)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, page), nil
}

func (s *BidStore) DeleteByBidder(ctx context.Context, bidderID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for listingID, bids := range s.bids {
		kept := bids[:0]
		for _, b := range bids {
			if b.BidderID == bidderID {
				deleted++
				continue
			}
			kept = append(kept, b)
		}
		if len(kept) == 0 {
			delete(s.bids, listingID)
		} else {
			s.bids[listingID] = kept
		}
	}
	return deleted, nil
}

func (s *BidStore) DeleteByListing(ctx context.Context, listingID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := int64(len(s.bids[listingID]))
	delete(s.bids, listingID)
	return deleted, nil
}

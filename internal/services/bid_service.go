package services

import (
	"context"
	"fmt"
	"time"

	"bidmarket/internal/domain"
	"bidmarket/pkg/logger"
	"bidmarket/pkg/utils"
)

// BidService owns the append-only, price-ordered bid history per listing and
// the admission rule. Admission is linearizable per listing: the per-listing
// lock serializes callers within one instance, and the store's conditional
// AdmitPrice raise arbitrates between instances sharing the database, so the
// admitted price sequence is strictly increasing no matter where the bids
// arrive.
type BidService struct {
	listings   domain.ListingRepository
	bids       domain.BidRepository
	stateCache domain.ListingStateCache
	events     domain.EventPublisher
	locks      *ListingLocks
	log        logger.Logger
}

func NewBidService(
	listings domain.ListingRepository,
	bids domain.BidRepository,
	stateCache domain.ListingStateCache,
	events domain.EventPublisher,
	locks *ListingLocks,
	log logger.Logger,
) *BidService {
	return &BidService{
		listings:   listings,
		bids:       bids,
		stateCache: stateCache,
		events:     events,
		locks:      locks,
		log:        log,
	}
}

// PlaceBid admits a bid iff the listing is biddable, the bidder is not the
// seller, and the price strictly exceeds both the floor price and the current
// highest admitted bid. Losers of a race receive ErrPriceNotHighest and may
// retry with a higher price.
func (s *BidService) PlaceBid(ctx context.Context, listingID, bidderID string, price int64, now time.Time) (*domain.Bid, error) {
	// Fast path: a listing known closed in the cache cannot admit anything,
	// so reject before taking the admission lock.
	if open, known, err := s.stateCache.GetListingOpen(ctx, listingID); err == nil && known && !open {
		return nil, fmt.Errorf("place bid on listing %s: %w", listingID, domain.ErrAuctionClosed)
	}

	unlock := s.locks.Lock(listingID)
	defer unlock()

	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.Biddable(now) {
		return nil, fmt.Errorf("place bid on listing %s: %w", listingID, domain.ErrAuctionClosed)
	}
	if bidderID == listing.SellerID {
		return nil, fmt.Errorf("place bid on listing %s: %w", listingID, domain.ErrSelfBid)
	}
	if price <= listing.FloorPrice {
		return nil, fmt.Errorf("place bid on listing %s: %w", listingID, domain.ErrPriceTooLow)
	}
	if price <= listing.HighestPrice {
		return nil, fmt.Errorf("place bid on listing %s: %w", listingID, domain.ErrPriceNotHighest)
	}

	// The conditional raise is the cross-instance arbiter: of concurrent
	// admissions on the same listing, the store lets exactly one through at
	// a time, each strictly above the last.
	admitted, err := s.listings.AdmitPrice(ctx, listingID, price)
	if err != nil {
		return nil, err
	}
	if !admitted {
		// Another instance moved the listing since the read above.
		current, err := s.listings.GetListing(ctx, listingID)
		if err != nil {
			return nil, err
		}
		if !current.Biddable(now) {
			return nil, fmt.Errorf("place bid on listing %s: %w", listingID, domain.ErrAuctionClosed)
		}
		return nil, fmt.Errorf("place bid on listing %s: %w", listingID, domain.ErrPriceNotHighest)
	}

	bid := &domain.Bid{
		ID:        utils.GenerateID("bid"),
		ListingID: listingID,
		BidderID:  bidderID,
		Price:     price,
		CreatedAt: now,
	}
	if err := s.bids.InsertBid(ctx, bid); err != nil {
		return nil, fmt.Errorf("record bid for listing %s: %w", listingID, err)
	}

	s.log.Info("Bid admitted", "listing_id", listingID, "bidder_id", bidderID, "price", price)

	if err := s.events.PublishAuctionEvent(ctx, &domain.AuctionEvent{
		Type:      domain.EventBidAccepted,
		ListingID: listingID,
		SellerID:  listing.SellerID,
		UserID:    bidderID,
		Price:     price,
		Timestamp: now,
	}); err != nil {
		s.log.Error("Failed to publish bid event", "listing_id", listingID, "error", err)
	}

	return bid, nil
}

// HighestBid returns the current highest admitted bid, ErrNoBids if none.
func (s *BidService) HighestBid(ctx context.Context, listingID string) (*domain.Bid, error) {
	return s.bids.HighestByListing(ctx, listingID)
}

func (s *BidService) ListByListing(ctx context.Context, listingID string) ([]*domain.Bid, error) {
	return s.bids.ListByListing(ctx, listingID)
}

func (s *BidService) ListByBidder(ctx context.Context, bidderID string, page domain.Page) ([]*domain.Bid, error) {
	return s.bids.ListByBidder(ctx, bidderID, page)
}

// BulkDeleteByBidder removes all of a user's bids across all listings. This
// is an administrative operation used by the user deletion cascade; the
// individual bids are not re-validated.
func (s *BidService) BulkDeleteByBidder(ctx context.Context, bidderID string) (int64, error) {
	deleted, err := s.bids.DeleteByBidder(ctx, bidderID)
	if err != nil {
		return 0, fmt.Errorf("bulk delete bids of bidder %s: %w", bidderID, err)
	}
	if deleted > 0 {
		s.log.Info("Bids purged for bidder", "bidder_id", bidderID, "count", deleted)
	}
	return deleted, nil
}

// BulkDeleteByListing removes all bids of a listing that is being cancelled.
func (s *BidService) BulkDeleteByListing(ctx context.Context, listingID string) (int64, error) {
	deleted, err := s.bids.DeleteByListing(ctx, listingID)
	if err != nil {
		return 0, fmt.Errorf("bulk delete bids of listing %s: %w", listingID, err)
	}
	if deleted > 0 {
		s.log.Info("Bids purged for listing", "listing_id", listingID, "count", deleted)
	}
	return deleted, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bidmarket/internal/domain"
	"bidmarket/pkg/logger"
	"bidmarket/pkg/utils"
)

// ResolverService closes expired listings and computes their winner exactly
// once. Resolution may be triggered by the sweep and by a result query at the
// same time; both converge on the conditional CloseIfOpen transition, and the
// caller that loses the race observes the already-resolved state and returns
// the same outcome without repeating side effects.
type ResolverService struct {
	listings   domain.ListingRepository
	bids       domain.BidRepository
	chats      domain.ChatSessionRepository
	favorites  domain.FavoriteRepository
	stateCache domain.ListingStateCache
	events     domain.EventPublisher
	locks      *ListingLocks
	log        logger.Logger
}

func NewResolverService(
	listings domain.ListingRepository,
	bids domain.BidRepository,
	chats domain.ChatSessionRepository,
	favorites domain.FavoriteRepository,
	stateCache domain.ListingStateCache,
	events domain.EventPublisher,
	locks *ListingLocks,
	log logger.Logger,
) *ResolverService {
	return &ResolverService{
		listings:   listings,
		bids:       bids,
		chats:      chats,
		favorites:  favorites,
		stateCache: stateCache,
		events:     events,
		locks:      locks,
		log:        log,
	}
}

// Resolve closes the listing and determines its outcome. ErrNotYetExpired
// before the listing's expiry. Safe to call repeatedly: later calls return
// the outcome computed by the first without creating a second chat session.
func (s *ResolverService) Resolve(ctx context.Context, listingID string, now time.Time) (*domain.ResolutionOutcome, error) {
	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Open && now.Before(listing.ExpireAt) {
		return nil, fmt.Errorf("resolve listing %s: %w", listingID, domain.ErrNotYetExpired)
	}

	unlock := s.locks.Lock(listingID)
	defer unlock()

	performed, err := s.listings.CloseIfOpen(ctx, listingID, now)
	if err != nil {
		return nil, err
	}
	s.cacheClosed(ctx, listingID)

	highest, err := s.bids.HighestByListing(ctx, listingID)
	if err != nil && !errors.Is(err, domain.ErrNoBids) {
		return nil, err
	}

	if highest == nil {
		if performed {
			s.log.Info("Listing resolved unsold", "listing_id", listingID)
			s.publish(ctx, &domain.AuctionEvent{
				Type:      domain.EventListingUnsold,
				ListingID: listingID,
				SellerID:  listing.SellerID,
				Timestamp: now,
			})
		}
		return &domain.ResolutionOutcome{
			ListingID:  listingID,
			Status:     domain.OutcomeUnsold,
			ResolvedAt: now,
		}, nil
	}

	// The uniqueness guard on chat sessions makes the side effect of a
	// repeated resolve a no-op.
	created, err := s.chats.CreateIfAbsent(ctx, &domain.ChatSession{
		ID:        utils.GenerateID("chat"),
		ListingID: listingID,
		SellerID:  listing.SellerID,
		WinnerID:  highest.BidderID,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("open chat session for listing %s: %w", listingID, err)
	}

	if created {
		s.log.Info("Listing resolved won", "listing_id", listingID,
			"winner_id", highest.BidderID, "price", highest.Price)
		s.publish(ctx, &domain.AuctionEvent{
			Type:      domain.EventListingWon,
			ListingID: listingID,
			SellerID:  listing.SellerID,
			UserID:    highest.BidderID,
			Price:     highest.Price,
			Timestamp: now,
		})
	}

	return &domain.ResolutionOutcome{
		ListingID:  listingID,
		Status:     domain.OutcomeWon,
		WinnerID:   highest.BidderID,
		Price:      highest.Price,
		ResolvedAt: now,
	}, nil
}

// Cancel force-closes a listing without computing a winner, purging its bids
// and deactivating its favorites. Used by the user deletion cascade. The
// listing closes before the purge: once closed, no admission anywhere can
// land a new bid, so the purge sees the final bid set. A concurrent bid
// either landed before the close (and is purged here) or is rejected.
func (s *ResolverService) Cancel(ctx context.Context, listingID string, now time.Time) error {
	unlock := s.locks.Lock(listingID)
	defer unlock()

	closed, err := s.listings.CloseIfOpen(ctx, listingID, now)
	if err != nil {
		return err
	}
	s.cacheClosed(ctx, listingID)

	if _, err := s.bids.DeleteByListing(ctx, listingID); err != nil {
		return fmt.Errorf("purge bids of listing %s: %w", listingID, err)
	}

	if err := s.favorites.DeactivateByListing(ctx, listingID); err != nil {
		return fmt.Errorf("deactivate favorites of listing %s: %w", listingID, err)
	}

	if closed {
		s.log.Info("Listing cancelled", "listing_id", listingID)
		s.publish(ctx, &domain.AuctionEvent{
			Type:      domain.EventListingCancelled,
			ListingID: listingID,
			Timestamp: now,
		})
	}
	return nil
}

func (s *ResolverService) cacheClosed(ctx context.Context, listingID string) {
	if err := s.stateCache.SetListingOpen(ctx, listingID, false); err != nil {
		s.log.Warn("Failed to update listing state cache", "listing_id", listingID, "error", err)
	}
}

func (s *ResolverService) publish(ctx context.Context, event *domain.AuctionEvent) {
	if err := s.events.PublishAuctionEvent(ctx, event); err != nil {
		s.log.Error("Failed to publish resolution event", "type", event.Type,
			"listing_id", event.ListingID, "error", err)
	}
}

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

// FavoriteService tracks a user's toggled interest in listings. Favorites
// are fully decoupled from bidding state.
type FavoriteService struct {
	listings  domain.ListingRepository
	favorites domain.FavoriteRepository
	log       logger.Logger
}

func NewFavoriteService(
	listings domain.ListingRepository,
	favorites domain.FavoriteRepository,
	log logger.Logger,
) *FavoriteService {
	return &FavoriteService{
		listings:  listings,
		favorites: favorites,
		log:       log,
	}
}

// Toggle flips the favorite for (user, listing), creating it active on the
// first call, and returns the new state.
func (s *FavoriteService) Toggle(ctx context.Context, userID, listingID string, now time.Time) (bool, error) {
	if _, err := s.listings.GetListing(ctx, listingID); err != nil {
		return false, err
	}

	favorite, err := s.favorites.GetByUserAndListing(ctx, userID, listingID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
		favorite = &domain.Favorite{
			ID:        utils.GenerateID("favorite"),
			UserID:    userID,
			ListingID: listingID,
			Active:    false,
			CreatedAt: now,
		}
	}

	favorite.Active = !favorite.Active
	favorite.UpdatedAt = now
	if err := s.favorites.SaveFavorite(ctx, favorite); err != nil {
		return false, fmt.Errorf("toggle favorite for listing %s: %w", listingID, err)
	}

	s.log.Debug("Favorite toggled", "user_id", userID, "listing_id", listingID, "active", favorite.Active)
	return favorite.Active, nil
}

// IsActive reports the favorite state; false when no record exists.
func (s *FavoriteService) IsActive(ctx context.Context, userID, listingID string) (bool, error) {
	if _, err := s.listings.GetListing(ctx, listingID); err != nil {
		return false, err
	}

	favorite, err := s.favorites.GetByUserAndListing(ctx, userID, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return favorite.Active, nil
}

func (s *FavoriteService) ListActiveByUser(ctx context.Context, userID string, page domain.Page) ([]*domain.Favorite, error) {
	return s.favorites.ListActiveByUser(ctx, userID, page)
}

// CountForListing returns how many users currently favorite the listing.
func (s *FavoriteService) CountForListing(ctx context.Context, listingID string) (int, error) {
	if _, err := s.listings.GetListing(ctx, listingID); err != nil {
		return 0, err
	}
	return s.favorites.CountActiveByListing(ctx, listingID)
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"bidmarket/internal/domain"
	"bidmarket/pkg/logger"
	"bidmarket/pkg/utils"
)

// CreateListingSpec carries the seller-supplied fields of a new listing.
type CreateListingSpec struct {
	Title       string
	Description string
	Category    domain.Category
	Images      []string
	FloorPrice  int64
	Location    string
	SellerID    string
}

// CatalogService owns the listing lifecycle: creation, lookup and the
// force-close used by cascading cleanup.
type CatalogService struct {
	listings        domain.ListingRepository
	stateCache      domain.ListingStateCache
	listingDuration time.Duration
	log             logger.Logger
}

func NewCatalogService(
	listings domain.ListingRepository,
	stateCache domain.ListingStateCache,
	listingDuration time.Duration,
	log logger.Logger,
) *CatalogService {
	return &CatalogService{
		listings:        listings,
		stateCache:      stateCache,
		listingDuration: listingDuration,
		log:             log,
	}
}

// CreateListing validates the spec and stores a new open listing expiring a
// fixed duration after now. The floor price is fixed for the listing's life.
func (s *CatalogService) CreateListing(ctx context.Context, spec CreateListingSpec, now time.Time) (*domain.Listing, error) {
	if err := validateListingSpec(spec); err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		ID:          utils.GenerateID("listing"),
		Title:       spec.Title,
		Description: spec.Description,
		Category:    spec.Category,
		Images:      spec.Images,
		FloorPrice:  spec.FloorPrice,
		// The first admissible bid must strictly exceed the floor.
		HighestPrice: spec.FloorPrice,
		Location:     spec.Location,
		SellerID:     spec.SellerID,
		Open:         true,
		ExpireAt:     now.Add(s.listingDuration),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.listings.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	if err := s.stateCache.SetListingOpen(ctx, listing.ID, true); err != nil {
		s.log.Warn("Failed to prime listing state cache", "listing_id", listing.ID, "error", err)
	}

	s.log.Info("Listing created", "listing_id", listing.ID,
		"seller_id", listing.SellerID, "floor_price", listing.FloorPrice,
		"expire_at", listing.ExpireAt)
	return listing, nil
}

func validateListingSpec(spec CreateListingSpec) error {
	switch {
	case strings.TrimSpace(spec.Title) == "":
		return fmt.Errorf("%w: title must not be blank", domain.ErrInvalidListing)
	// Bounds count characters, not bytes; multibyte titles up to the limit
	// are valid.
	case utf8.RuneCountInString(spec.Title) > domain.MaxTitleLength:
		return fmt.Errorf("%w: title exceeds %d characters", domain.ErrInvalidListing, domain.MaxTitleLength)
	case strings.TrimSpace(spec.Description) == "":
		return fmt.Errorf("%w: description must not be blank", domain.ErrInvalidListing)
	case utf8.RuneCountInString(spec.Description) > domain.MaxDescriptionLen:
		return fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidListing, domain.MaxDescriptionLen)
	case len(spec.Images) > domain.MaxListingImages:
		return fmt.Errorf("%w: at most %d images allowed", domain.ErrInvalidListing, domain.MaxListingImages)
	case spec.FloorPrice < domain.MinFloorPrice:
		return fmt.Errorf("%w: floor price must be at least %d", domain.ErrInvalidListing, domain.MinFloorPrice)
	case spec.SellerID == "":
		return fmt.Errorf("%w: seller must be provided", domain.ErrInvalidListing)
	}
	return nil
}

func (s *CatalogService) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	return s.listings.GetListing(ctx, listingID)
}

// ForceClose closes the listing without computing a winner. No-op when the
// listing is already closed.
func (s *CatalogService) ForceClose(ctx context.Context, listingID string, now time.Time) error {
	closed, err := s.listings.CloseIfOpen(ctx, listingID, now)
	if err != nil {
		return err
	}
	if err := s.stateCache.SetListingOpen(ctx, listingID, false); err != nil {
		s.log.Warn("Failed to update listing state cache", "listing_id", listingID, "error", err)
	}
	if closed {
		s.log.Info("Listing force-closed", "listing_id", listingID)
	}
	return nil
}

// IsBiddable reports whether the listing is open and not yet expired.
func (s *CatalogService) IsBiddable(ctx context.Context, listingID string, now time.Time) (bool, error) {
	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return false, err
	}
	return listing.Biddable(now), nil
}

package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"bidmarket/internal/domain"
	"bidmarket/internal/services"
	"bidmarket/pkg/logger"
)

type ListingHandler struct {
	catalog   *services.CatalogService
	resolver  *services.ResolverService
	favorites *services.FavoriteService
	log       logger.Logger
}

func NewListingHandler(
	catalog *services.CatalogService,
	resolver *services.ResolverService,
	favorites *services.FavoriteService,
	log logger.Logger,
) *ListingHandler {
	return &ListingHandler{
		catalog:   catalog,
		resolver:  resolver,
		favorites: favorites,
		log:       log,
	}
}

type CreateListingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	FloorPrice  int64    `json:"floor_price"`
	Location    string   `json:"location"`
}

type ListingResponse struct {
	ListingID     string    `json:"listing_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Images        []string  `json:"images"`
	FloorPrice    int64     `json:"floor_price"`
	Location      string    `json:"location,omitempty"`
	SellerID      string    `json:"seller_id"`
	Open          bool      `json:"open"`
	ExpireAt      time.Time `json:"expire_at"`
	CreatedAt     time.Time `json:"created_at"`
	FavoriteCount int       `json:"favorite_count"`
}

func listingResponse(listing *domain.Listing, favoriteCount int) ListingResponse {
	return ListingResponse{
		ListingID:     listing.ID,
		Title:         listing.Title,
		Description:   listing.Description,
		Category:      listing.Category.String(),
		Images:        listing.Images,
		FloorPrice:    listing.FloorPrice,
		Location:      listing.Location,
		SellerID:      listing.SellerID,
		Open:          listing.Open,
		ExpireAt:      listing.ExpireAt,
		CreatedAt:     listing.CreatedAt,
		FavoriteCount: favoriteCount,
	}
}

func (h *ListingHandler) CreateListing(c echo.Context) error {
	sellerID := currentUser(c)
	if sellerID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing identity"})
	}

	var req CreateListingRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	category, ok := domain.ParseCategory(req.Category)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown category"})
	}

	listing, err := h.catalog.CreateListing(c.Request().Context(), services.CreateListingSpec{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Images:      req.Images,
		FloorPrice:  req.FloorPrice,
		Location:    req.Location,
		SellerID:    sellerID,
	}, time.Now())
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, listingResponse(listing, 0))
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	listingID := c.Param("id")

	listing, err := h.catalog.GetListing(c.Request().Context(), listingID)
	if err != nil {
		return respondDomainError(c, err)
	}

	count, err := h.favorites.CountForListing(c.Request().Context(), listingID)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, listingResponse(listing, count))
}

type ResolutionResponse struct {
	ListingID string `json:"listing_id"`
	Status    string `json:"status"`
	WinnerID  string `json:"winner_id,omitempty"`
	Price     int64  `json:"price,omitempty"`
}

// GetResult resolves an expired listing on demand; querying the result is
// the synchronous resolution trigger alongside the background sweep.
func (h *ListingHandler) GetResult(c echo.Context) error {
	listingID := c.Param("id")

	outcome, err := h.resolver.Resolve(c.Request().Context(), listingID, time.Now())
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, ResolutionResponse{
		ListingID: outcome.ListingID,
		Status:    string(outcome.Status),
		WinnerID:  outcome.WinnerID,
		Price:     outcome.Price,
	})
}

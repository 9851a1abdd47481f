package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"bidmarket/internal/domain"
	"bidmarket/internal/services"
	"bidmarket/pkg/logger"
)

type BidHandler struct {
	bids *services.BidService
	log  logger.Logger
}

func NewBidHandler(bids *services.BidService, log logger.Logger) *BidHandler {
	return &BidHandler{bids: bids, log: log}
}

type PlaceBidRequest struct {
	Price int64 `json:"price"`
}

type BidResponse struct {
	BidID     string    `json:"bid_id"`
	ListingID string    `json:"listing_id"`
	BidderID  string    `json:"bidder_id"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

func bidResponse(bid *domain.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.ID,
		ListingID: bid.ListingID,
		BidderID:  bid.BidderID,
		Price:     bid.Price,
		CreatedAt: bid.CreatedAt,
	}
}

func (h *BidHandler) PlaceBid(c echo.Context) error {
	bidderID := currentUser(c)
	if bidderID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing identity"})
	}

	listingID := c.Param("id")

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Price <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Price must be positive"})
	}

	bid, err := h.bids.PlaceBid(c.Request().Context(), listingID, bidderID, req.Price, time.Now())
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, bidResponse(bid))
}

func (h *BidHandler) GetHighestBid(c echo.Context) error {
	listingID := c.Param("id")

	bid, err := h.bids.HighestBid(c.Request().Context(), listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNoBids) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no_bids"})
		}
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, bidResponse(bid))
}

func (h *BidHandler) ListListingBids(c echo.Context) error {
	listingID := c.Param("id")

	bids, err := h.bids.ListByListing(c.Request().Context(), listingID)
	if err != nil {
		return respondDomainError(c, err)
	}

	responses := make([]BidResponse, 0, len(bids))
	for _, bid := range bids {
		responses = append(responses, bidResponse(bid))
	}
	return c.JSON(http.StatusOK, responses)
}

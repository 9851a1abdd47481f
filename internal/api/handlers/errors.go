package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"bidmarket/internal/domain"
)

// identityHeader carries the authenticated user id, supplied by the identity
// collaborator in front of this service.
const identityHeader = "X-User-ID"

func currentUser(c echo.Context) string {
	return c.Request().Header.Get(identityHeader)
}

// respondDomainError maps core errors onto HTTP statuses. Bid rejections are
// expected outcomes, reported as 409 with a machine-readable reason.
func respondDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not_found"})
	case errors.Is(err, domain.ErrInvalidListing):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid_listing", "detail": err.Error()})
	case errors.Is(err, domain.ErrAuctionClosed):
		return c.JSON(http.StatusConflict, map[string]string{"error": "auction_closed"})
	case errors.Is(err, domain.ErrSelfBid):
		return c.JSON(http.StatusConflict, map[string]string{"error": "self_bid"})
	case errors.Is(err, domain.ErrPriceTooLow):
		return c.JSON(http.StatusConflict, map[string]string{"error": "price_too_low"})
	case errors.Is(err, domain.ErrPriceNotHighest):
		return c.JSON(http.StatusConflict, map[string]string{"error": "price_not_highest"})
	case errors.Is(err, domain.ErrNotYetExpired):
		return c.JSON(http.StatusConflict, map[string]string{"error": "not_yet_expired"})
	case errors.Is(err, domain.ErrDeletionFailed):
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "deletion_failed"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal"})
	}
}

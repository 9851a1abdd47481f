package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"bidmarket/internal/domain"
	"bidmarket/internal/services"
	"bidmarket/pkg/logger"
)

type UserHandler struct {
	accounts  *services.AccountService
	bids      *services.BidService
	favorites *services.FavoriteService
	chats     domain.ChatSessionRepository
	listings  domain.ListingRepository
	log       logger.Logger
}

func NewUserHandler(
	accounts *services.AccountService,
	bids *services.BidService,
	favorites *services.FavoriteService,
	chats domain.ChatSessionRepository,
	listings domain.ListingRepository,
	log logger.Logger,
) *UserHandler {
	return &UserHandler{
		accounts:  accounts,
		bids:      bids,
		favorites: favorites,
		chats:     chats,
		listings:  listings,
		log:       log,
	}
}

func pageFromQuery(c echo.Context) domain.Page {
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return domain.Page{Offset: offset, Limit: limit}
}

type JoinRequest struct {
	Provider     string `json:"provider"`
	ProviderID   string `json:"provider_id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image"`
}

type AccountResponse struct {
	AccountID    string    `json:"account_id"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Anonymized   bool      `json:"anonymized"`
	CreatedAt    time.Time `json:"created_at"`
}

func accountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:    account.ID,
		Username:     account.Username,
		ProfileImage: account.ProfileImage,
		Anonymized:   account.Anonymized,
		CreatedAt:    account.CreatedAt,
	}
}

// Join binds an authenticated provider identity to an account, creating one
// on first sight. The identity collaborator has already verified the pair.
func (h *UserHandler) Join(c echo.Context) error {
	var req JoinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Provider == "" || req.ProviderID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "provider identity required"})
	}

	account, err := h.accounts.Join(c.Request().Context(), req.Provider, req.ProviderID, req.Username, req.ProfileImage)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, accountResponse(account))
}

func (h *UserHandler) GetUser(c echo.Context) error {
	account, err := h.accounts.GetAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, accountResponse(account))
}

type UpdateUserRequest struct {
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image"`
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	userID := currentUser(c)
	if userID == "" || userID != c.Param("id") {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "not account owner"})
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Username == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username required"})
	}

	if err := h.accounts.UpdateProfile(c.Request().Context(), userID, req.Username, req.ProfileImage); err != nil {
		return respondDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteUser runs the cascading cleanup: the user's bids are purged, their
// open listings cancelled and the account anonymized.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID := currentUser(c)
	if userID == "" || userID != c.Param("id") {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "not account owner"})
	}

	if err := h.accounts.DeleteUser(c.Request().Context(), userID); err != nil {
		return respondDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) ListUserBids(c echo.Context) error {
	bids, err := h.bids.ListByBidder(c.Request().Context(), c.Param("id"), pageFromQuery(c))
	if err != nil {
		return respondDomainError(c, err)
	}

	responses := make([]BidResponse, 0, len(bids))
	for _, bid := range bids {
		responses = append(responses, bidResponse(bid))
	}
	return c.JSON(http.StatusOK, responses)
}

func (h *UserHandler) ListUserListings(c echo.Context) error {
	ctx := c.Request().Context()

	listings, err := h.listings.ListBySeller(ctx, c.Param("id"), pageFromQuery(c))
	if err != nil {
		return respondDomainError(c, err)
	}

	responses := make([]ListingResponse, 0, len(listings))
	for _, listing := range listings {
		count, err := h.favorites.CountForListing(ctx, listing.ID)
		if err != nil {
			return respondDomainError(c, err)
		}
		responses = append(responses, listingResponse(listing, count))
	}
	return c.JSON(http.StatusOK, responses)
}

type FavoriteResponse struct {
	ListingID string    `json:"listing_id"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *UserHandler) ListUserFavorites(c echo.Context) error {
	favorites, err := h.favorites.ListActiveByUser(c.Request().Context(), c.Param("id"), pageFromQuery(c))
	if err != nil {
		return respondDomainError(c, err)
	}

	responses := make([]FavoriteResponse, 0, len(favorites))
	for _, favorite := range favorites {
		responses = append(responses, FavoriteResponse{
			ListingID: favorite.ListingID,
			Active:    favorite.Active,
			UpdatedAt: favorite.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, responses)
}

type ChatSessionResponse struct {
	ChatID    string    `json:"chat_id"`
	ListingID string    `json:"listing_id"`
	SellerID  string    `json:"seller_id"`
	WinnerID  string    `json:"winner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *UserHandler) ListUserChats(c echo.Context) error {
	userID := currentUser(c)
	if userID == "" || userID != c.Param("id") {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "not account owner"})
	}

	sessions, err := h.chats.ListByParticipant(c.Request().Context(), userID, pageFromQuery(c))
	if err != nil {
		return respondDomainError(c, err)
	}

	responses := make([]ChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, ChatSessionResponse{
			ChatID:    session.ID,
			ListingID: session.ListingID,
			SellerID:  session.SellerID,
			WinnerID:  session.WinnerID,
			CreatedAt: session.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, responses)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"bidmarket/internal/services"
	"bidmarket/pkg/logger"
)

type FavoriteHandler struct {
	favorites *services.FavoriteService
	log       logger.Logger
}

func NewFavoriteHandler(favorites *services.FavoriteService, log logger.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, log: log}
}

func (h *FavoriteHandler) Toggle(c echo.Context) error {
	userID := currentUser(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing identity"})
	}

	active, err := h.favorites.Toggle(c.Request().Context(), userID, c.Param("id"), time.Now())
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"active": active})
}

func (h *FavoriteHandler) Check(c echo.Context) error {
	userID := currentUser(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing identity"})
	}

	active, err := h.favorites.IsActive(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"active": active})
}

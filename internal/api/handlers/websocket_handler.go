package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "bidmarket/internal/infrastructure/websocket"
	"bidmarket/pkg/logger"
)

type WebSocketHandler struct {
	manager  *ws.ConnectionManager
	upgrader websocket.Upgrader
	log      logger.Logger
}

func NewWebSocketHandler(manager *ws.ConnectionManager, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Notifications connects a client for chat-opened and bid notifications.
// The socket is push-only; inbound frames are read solely to detect close.
func (h *WebSocketHandler) Notifications(c echo.Context) error {
	userID := currentUser(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing identity"})
	}

	socket, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "user_id", userID, "error", err)
		return err
	}

	conn := ws.NewConn(socket, userID)
	h.manager.RegisterConnection(conn)

	go func() {
		defer func() {
			h.manager.UnregisterConnection(conn)
			conn.Close()
		}()
		for {
			if _, _, err := socket.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}

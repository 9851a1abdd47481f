package websocket

import (
	"context"

	"bidmarket/internal/domain"
	"bidmarket/pkg/logger"
)

// ChatGateway bridges resolution events to connected clients. When a listing
// is won it tells seller and winner that their chat session opened; the chat
// UI itself lives outside the core.
type ChatGateway struct {
	manager *ConnectionManager
	log     logger.Logger
}

func NewChatGateway(manager *ConnectionManager, log logger.Logger) *ChatGateway {
	return &ChatGateway{manager: manager, log: log}
}

// HandleEvent is a domain.EventHandler fed by the event subscriber.
func (g *ChatGateway) HandleEvent(event *domain.AuctionEvent) error {
	ctx := context.Background()

	switch event.Type {
	case domain.EventListingWon:
		message := map[string]interface{}{
			"type":       "chat_opened",
			"listing_id": event.ListingID,
			"seller_id":  event.SellerID,
			"winner_id":  event.UserID,
			"price":      event.Price,
		}
		g.manager.NotifyUser(ctx, event.SellerID, message)
		g.manager.NotifyUser(ctx, event.UserID, message)

	case domain.EventBidAccepted:
		g.manager.NotifyUser(ctx, event.SellerID, map[string]interface{}{
			"type":       "bid_accepted",
			"listing_id": event.ListingID,
			"price":      event.Price,
		})
	}
	return nil
}

package redis

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"bidmarket/internal/domain"
)

const auctionEventsChannel = "auction_events"

type EventPublisherImpl struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) *EventPublisherImpl {
	return &EventPublisherImpl{client: client}
}

func (r *EventPublisherImpl) PublishAuctionEvent(ctx context.Context, event *domain.AuctionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, auctionEventsChannel, payload).Err()
}

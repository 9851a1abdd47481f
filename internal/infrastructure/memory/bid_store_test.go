package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bidmarket/internal/domain"
)

func TestBidStore_HighestByListing(t *testing.T) {
	store := NewBidStore()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.InsertBid(ctx, &domain.Bid{ID: "bid-1", ListingID: "listing-1", BidderID: "alice", Price: 12000, CreatedAt: base}))
	require.NoError(t, store.InsertBid(ctx, &domain.Bid{ID: "bid-2", ListingID: "listing-1", BidderID: "bob", Price: 15000, CreatedAt: base.Add(time.Second)}))
	require.NoError(t, store.InsertBid(ctx, &domain.Bid{ID: "bid-3", ListingID: "listing-1", BidderID: "carol", Price: 15000, CreatedAt: base.Add(2 * time.Second)}))

	// The earlier of two equal-price bids wins.
	highest, err := store.HighestByListing(ctx, "listing-1")
	require.NoError(t, err)
	require.Equal(t, "bid-2", highest.ID)

	_, err = store.HighestByListing(ctx, "listing-empty")
	require.ErrorIs(t, err, domain.ErrNoBids)
}

func TestBidStore_DeleteByBidder(t *testing.T) {
	store := NewBidStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.InsertBid(ctx, &domain.Bid{ID: "bid-1", ListingID: "listing-1", BidderID: "alice", Price: 12000, CreatedAt: now}))
	require.NoError(t, store.InsertBid(ctx, &domain.Bid{ID: "bid-2", ListingID: "listing-2", BidderID: "alice", Price: 13000, CreatedAt: now}))
	require.NoError(t, store.InsertBid(ctx, &domain.Bid{ID: "bid-3", ListingID: "listing-1", BidderID: "bob", Price: 14000, CreatedAt: now}))

	deleted, err := store.DeleteByBidder(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	remaining, err := store.ListByListing(ctx, "listing-1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "bob", remaining[0].BidderID)
}

func TestPaginate(t *testing.T) {
	items := []*domain.Bid{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	page := paginate(items, domain.Page{Offset: 1, Limit: 2})
	require.Len(t, page, 2)
	require.Equal(t, "b", page[0].ID)
	require.Equal(t, "c", page[1].ID)

	// A zero limit means no cap, and an out-of-range offset yields nothing.
	require.Len(t, paginate(items, domain.Page{}), 4)
	require.Empty(t, paginate(items, domain.Page{Offset: 10, Limit: 2}))
}

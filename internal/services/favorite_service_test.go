package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bidmarket/internal/domain"
)

func TestFavoriteService_Toggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	listing := f.createListing(t, "seller-1", 10000, now)

	// No record yet.
	active, err := f.favService.IsActive(ctx, "alice", listing.ID)
	require.NoError(t, err)
	require.False(t, active)

	// First toggle creates an active favorite.
	active, err = f.favService.Toggle(ctx, "alice", listing.ID, now)
	require.NoError(t, err)
	require.True(t, active)

	// Toggling twice returns to the original state.
	active, err = f.favService.Toggle(ctx, "alice", listing.ID, now.Add(time.Second))
	require.NoError(t, err)
	require.False(t, active)

	active, err = f.favService.IsActive(ctx, "alice", listing.ID)
	require.NoError(t, err)
	require.False(t, active)
}

func TestFavoriteService_Toggle_ListingNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.favService.Toggle(context.Background(), "alice", "listing-missing", time.Now())
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.favService.IsActive(context.Background(), "alice", "listing-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFavoriteService_CountForListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	listing := f.createListing(t, "seller-1", 10000, now)

	for _, user := range []string{"alice", "bob", "carol"} {
		_, err := f.favService.Toggle(ctx, user, listing.ID, now)
		require.NoError(t, err)
	}
	_, err := f.favService.Toggle(ctx, "carol", listing.ID, now.Add(time.Second))
	require.NoError(t, err)

	count, err := f.favService.CountForListing(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestFavoriteService_ListActiveByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	first := f.createListing(t, "seller-1", 10000, now)
	second := f.createListing(t, "seller-2", 10000, now)

	_, err := f.favService.Toggle(ctx, "alice", first.ID, now)
	require.NoError(t, err)
	_, err = f.favService.Toggle(ctx, "alice", second.ID, now.Add(time.Second))
	require.NoError(t, err)

	favorites, err := f.favService.ListActiveByUser(ctx, "alice", domain.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, favorites, 2)

	// Deactivated favorites drop out of the listing.
	_, err = f.favService.Toggle(ctx, "alice", first.ID, now.Add(2*time.Second))
	require.NoError(t, err)

	favorites, err = f.favService.ListActiveByUser(ctx, "alice", domain.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	require.Equal(t, second.ID, favorites[0].ListingID)
}

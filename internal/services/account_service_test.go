package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bidmarket/internal/domain"
)

func TestAccountService_Join(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.accService.Join(ctx, "google", "provider-123", "zero", "image-url")
	require.NoError(t, err)
	require.NotEmpty(t, account.ID)
	require.Equal(t, "zero", account.Username)

	// Joining again with the same provider pair returns the same account.
	again, err := f.accService.Join(ctx, "google", "provider-123", "other name", "other image")
	require.NoError(t, err)
	require.Equal(t, account.ID, again.ID)
	require.Equal(t, "zero", again.Username)
}

func TestAccountService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.createAccount(t, "user-1", "zero")

	require.NoError(t, f.accService.UpdateProfile(ctx, account.ID, "ray", "new-image"))

	stored, err := f.accService.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, "ray", stored.Username)
	require.Equal(t, "new-image", stored.ProfileImage)

	require.ErrorIs(t, f.accService.UpdateProfile(ctx, "user-missing", "x", ""), domain.ErrNotFound)
}

func TestAccountService_DeleteUser_Cascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	seller := f.createAccount(t, "seller-1", "zero")
	f.createAccount(t, "alice", "ray")

	// The seller's open listing has a bid from alice; the seller also bid on
	// someone else's listing.
	ownListing := f.createListing(t, seller.ID, 10000, now)
	otherListing := f.createListing(t, "seller-2", 10000, now)

	_, err := f.bidService.PlaceBid(ctx, ownListing.ID, "alice", 15000, now)
	require.NoError(t, err)
	_, err = f.bidService.PlaceBid(ctx, otherListing.ID, seller.ID, 12000, now)
	require.NoError(t, err)

	// Alice favorited the seller's listing.
	_, err = f.favService.Toggle(ctx, "alice", ownListing.ID, now)
	require.NoError(t, err)

	require.NoError(t, f.accService.DeleteUser(ctx, seller.ID))

	// No bid placed by the deleted user remains anywhere.
	bids, err := f.bidService.ListByBidder(ctx, seller.ID, domain.Page{Limit: 10})
	require.NoError(t, err)
	require.Empty(t, bids)

	// The owned listing is closed with its bid history purged, and no chat
	// session was created even though a bid existed.
	stored, err := f.catalog.GetListing(ctx, ownListing.ID)
	require.NoError(t, err)
	require.False(t, stored.Open)

	remaining, err := f.bidService.ListByListing(ctx, ownListing.ID)
	require.NoError(t, err)
	require.Empty(t, remaining)

	_, err = f.chats.GetByListing(ctx, ownListing.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Favorites on the cancelled listing are deactivated.
	count, err := f.favorites.CountActiveByListing(ctx, ownListing.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	// The account row persists, anonymized.
	account, err := f.accService.GetAccount(ctx, seller.ID)
	require.NoError(t, err)
	require.True(t, account.Anonymized)
	require.Equal(t, domain.AnonymizedName, account.Username)
	require.Empty(t, account.Provider)
	require.Empty(t, account.ProviderID)

	// The other seller's listing stays open, just without the purged bid.
	stored, err = f.catalog.GetListing(ctx, otherListing.ID)
	require.NoError(t, err)
	require.True(t, stored.Open)
}

func TestAccountService_DeleteUser_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.createAccount(t, "seller-1", "zero")
	f.createListing(t, seller.ID, 10000, time.Now())

	require.NoError(t, f.accService.DeleteUser(ctx, seller.ID))
	require.NoError(t, f.accService.DeleteUser(ctx, seller.ID))

	account, err := f.accService.GetAccount(ctx, seller.ID)
	require.NoError(t, err)
	require.True(t, account.Anonymized)
}

func TestAccountService_DeleteUser_NotFound(t *testing.T) {
	f := newFixture(t)

	err := f.accService.DeleteUser(context.Background(), "user-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

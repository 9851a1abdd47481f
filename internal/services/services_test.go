package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bidmarket/internal/domain"
	"bidmarket/internal/infrastructure/memory"
	"bidmarket/pkg/logger"
)

// fixture wires the services against in-memory stores the same way main.go
// wires them against MySQL and Redis.
type fixture struct {
	listings  *memory.ListingStore
	bids      *memory.BidStore
	chats     *memory.ChatStore
	favorites *memory.FavoriteStore
	accounts  *memory.AccountStore
	state     *memory.StateCache
	events    *memory.EventRecorder

	catalog    *CatalogService
	bidService *BidService
	resolver   *ResolverService
	favService *FavoriteService
	accService *AccountService
}

const testListingDuration = 24 * time.Hour

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		listings:  memory.NewListingStore(),
		bids:      memory.NewBidStore(),
		chats:     memory.NewChatStore(),
		favorites: memory.NewFavoriteStore(),
		accounts:  memory.NewAccountStore(),
		state:     memory.NewStateCache(),
		events:    memory.NewEventRecorder(),
	}

	log := logger.NewNop()
	locks := NewListingLocks()
	f.catalog = NewCatalogService(f.listings, f.state, testListingDuration, log)
	f.bidService = NewBidService(f.listings, f.bids, f.state, f.events, locks, log)
	f.resolver = NewResolverService(f.listings, f.bids, f.chats, f.favorites, f.state, f.events, locks, log)
	f.favService = NewFavoriteService(f.listings, f.favorites, log)
	f.accService = NewAccountService(f.accounts, f.listings, f.bidService, f.resolver, log)
	return f
}

func (f *fixture) createListing(t *testing.T, sellerID string, floorPrice int64, now time.Time) *domain.Listing {
	t.Helper()

	listing, err := f.catalog.CreateListing(context.Background(), CreateListingSpec{
		Title:       "used laptop",
		Description: "barely used, good battery",
		Category:    domain.CategoryDigitalDevice,
		Images:      []string{"image-1"},
		FloorPrice:  floorPrice,
		SellerID:    sellerID,
	}, now)
	require.NoError(t, err)
	return listing
}

func (f *fixture) createAccount(t *testing.T, id, username string) *domain.Account {
	t.Helper()

	account := &domain.Account{
		ID:         id,
		Username:   username,
		Provider:   "google",
		ProviderID: "provider-" + id,
		GroupID:    defaultGroupID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	require.NoError(t, f.accounts.CreateAccount(context.Background(), account))
	return account
}

func (f *fixture) eventsOfType(eventType domain.AuctionEventType) []domain.AuctionEvent {
	var matched []domain.AuctionEvent
	for _, event := range f.events.Events() {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

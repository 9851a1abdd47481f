package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bidmarket/internal/domain"
	"bidmarket/internal/infrastructure/memory"
	"bidmarket/pkg/logger"
)

func TestBidService_PlaceBid_AdmissionRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	listing := f.createListing(t, "seller-1", 10000, now)

	// A bid exactly at the floor price is not strictly greater.
	_, err := f.bidService.PlaceBid(ctx, listing.ID, "alice", 10000, now)
	require.ErrorIs(t, err, domain.ErrPriceTooLow)

	bid, err := f.bidService.PlaceBid(ctx, listing.ID, "alice", 10001, now.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, int64(10001), bid.Price)

	// Matching the current highest is a retryable rejection.
	_, err = f.bidService.PlaceBid(ctx, listing.ID, "bob", 10000, now.Add(2*time.Second))
	require.ErrorIs(t, err, domain.ErrPriceTooLow)
	_, err = f.bidService.PlaceBid(ctx, listing.ID, "bob", 10001, now.Add(2*time.Second))
	require.ErrorIs(t, err, domain.ErrPriceNotHighest)

	_, err = f.bidService.PlaceBid(ctx, listing.ID, "bob", 15000, now.Add(3*time.Second))
	require.NoError(t, err)

	// Admitted prices are strictly increasing in creation order.
	bids, err := f.bidService.ListByListing(ctx, listing.ID)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	for i := 1; i < len(bids); i++ {
		require.Greater(t, bids[i].Price, bids[i-1].Price)
		require.Greater(t, bids[i].Price, listing.FloorPrice)
	}

	outcome, err := f.resolver.Resolve(ctx, listing.ID, listing.ExpireAt)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeWon, outcome.Status)
	require.Equal(t, "bob", outcome.WinnerID)
	require.Equal(t, int64(15000), outcome.Price)

	session, err := f.chats.GetByListing(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, "seller-1", session.SellerID)
	require.Equal(t, "bob", session.WinnerID)
}

func TestBidService_PlaceBid_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	listing := f.createListing(t, "seller-1", 10000, now)

	tests := []struct {
		name     string
		listing  string
		bidder   string
		price    int64
		at       time.Time
		expected error
	}{
		{
			name:     "listing_not_found",
			listing:  "listing-missing",
			bidder:   "alice",
			price:    20000,
			at:       now,
			expected: domain.ErrNotFound,
		},
		{
			name:     "seller_bids_own_listing",
			listing:  listing.ID,
			bidder:   "seller-1",
			price:    20000,
			at:       now,
			expected: domain.ErrSelfBid,
		},
		{
			name:     "expired_listing",
			listing:  listing.ID,
			bidder:   "alice",
			price:    20000,
			at:       listing.ExpireAt,
			expected: domain.ErrAuctionClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bidService.PlaceBid(ctx, tt.listing, tt.bidder, tt.price, tt.at)
			require.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestBidService_PlaceBid_ClosedListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	listing := f.createListing(t, "seller-1", 10000, now)

	require.NoError(t, f.catalog.ForceClose(ctx, listing.ID, now))

	_, err := f.bidService.PlaceBid(ctx, listing.ID, "alice", 20000, now)
	require.ErrorIs(t, err, domain.ErrAuctionClosed)
}

func TestBidService_HighestBid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	listing := f.createListing(t, "seller-1", 10000, now)

	_, err := f.bidService.HighestBid(ctx, listing.ID)
	require.ErrorIs(t, err, domain.ErrNoBids)

	_, err = f.bidService.PlaceBid(ctx, listing.ID, "alice", 12000, now)
	require.NoError(t, err)
	_, err = f.bidService.PlaceBid(ctx, listing.ID, "bob", 13000, now.Add(time.Second))
	require.NoError(t, err)

	highest, err := f.bidService.HighestBid(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, "bob", highest.BidderID)
	require.Equal(t, int64(13000), highest.Price)
}

// Two near-simultaneous bids on one listing admit in exactly one order
// consistent with strict price increase: the lower bid either lands first or
// is rejected, and the higher bid always ends up highest.
func TestBidService_PlaceBid_ConcurrentContention(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	listing := f.createListing(t, "seller-1", 10000, now)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	prices := []int64{12000, 13000}
	for i, price := range prices {
		wg.Add(1)
		go func(i int, price int64) {
			defer wg.Done()
			_, errs[i] = f.bidService.PlaceBid(ctx, listing.ID, "bidder", price, now)
		}(i, price)
	}
	wg.Wait()

	// 13000 always admits: it exceeds whatever state it observed.
	require.NoError(t, errs[1])

	bids, err := f.bidService.ListByListing(ctx, listing.ID)
	require.NoError(t, err)

	if errs[0] == nil {
		// 12000 won the race, so both were admitted in increasing order.
		require.Len(t, bids, 2)
		require.Equal(t, int64(12000), bids[0].Price)
	} else {
		require.ErrorIs(t, errs[0], domain.ErrPriceNotHighest)
		require.Len(t, bids, 1)
	}

	highest, err := f.bidService.HighestBid(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, int64(13000), highest.Price)
}

// Two service instances with nothing shared in-process, as two API processes
// share one database. The in-process lock cannot serialize them; the store's
// conditional price raise must. Of two equal concurrent bids exactly one is
// admitted, every iteration.
func TestBidService_PlaceBid_CrossInstanceAdmission(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	for i := 0; i < 100; i++ {
		listings := memory.NewListingStore()
		bids := memory.NewBidStore()
		events := memory.NewEventRecorder()

		catalog := NewCatalogService(listings, memory.NewStateCache(), testListingDuration, log)
		first := NewBidService(listings, bids, memory.NewStateCache(), events, NewListingLocks(), log)
		second := NewBidService(listings, bids, memory.NewStateCache(), events, NewListingLocks(), log)

		now := time.Now()
		listing, err := catalog.CreateListing(ctx, CreateListingSpec{
			Title:       "used laptop",
			Description: "barely used, good battery",
			Category:    domain.CategoryDigitalDevice,
			FloorPrice:  10000,
			SellerID:    "seller-1",
		}, now)
		require.NoError(t, err)

		errs := make([]error, 2)
		var wg sync.WaitGroup
		for j, instance := range []*BidService{first, second} {
			wg.Add(1)
			go func(j int, instance *BidService) {
				defer wg.Done()
				_, errs[j] = instance.PlaceBid(ctx, listing.ID, []string{"alice", "bob"}[j], 12000, now)
			}(j, instance)
		}
		wg.Wait()

		admitted, err := first.ListByListing(ctx, listing.ID)
		require.NoError(t, err)
		require.Len(t, admitted, 1)

		if errs[0] == nil {
			require.ErrorIs(t, errs[1], domain.ErrPriceNotHighest)
		} else {
			require.NoError(t, errs[1])
			require.ErrorIs(t, errs[0], domain.ErrPriceNotHighest)
		}

		// A later higher bid on the losing instance still admits.
		loser := first
		if errs[1] != nil {
			loser = second
		}
		_, err = loser.PlaceBid(ctx, listing.ID, "carol", 13000, now.Add(time.Second))
		require.NoError(t, err)
	}
}

func TestBidService_ConcurrentEscalation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	listing := f.createListing(t, "seller-1", 10000, now)

	const bidders = 20
	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Rejections are expected; only admitted bids matter below.
			f.bidService.PlaceBid(ctx, listing.ID, "bidder", 11000+int64(i)*100, now.Add(time.Duration(i)))
		}(i)
	}
	wg.Wait()

	bids, err := f.bidService.ListByListing(ctx, listing.ID)
	require.NoError(t, err)
	require.NotEmpty(t, bids)
	for i := 1; i < len(bids); i++ {
		require.Greater(t, bids[i].Price, bids[i-1].Price)
	}

	highest, err := f.bidService.HighestBid(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, bids[len(bids)-1].ID, highest.ID)
}

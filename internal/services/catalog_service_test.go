package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bidmarket/internal/domain"
)

func TestCatalogService_CreateListing(t *testing.T) {
	now := time.Now()

	valid := CreateListingSpec{
		Title:       "mechanical kbd",
		Description: "clicky, barely used",
		Category:    domain.CategoryDigitalDevice,
		Images:      []string{"a", "b"},
		FloorPrice:  10000,
		SellerID:    "seller-1",
	}

	tests := []struct {
		name    string
		mutate  func(spec *CreateListingSpec)
		wantErr bool
	}{
		{
			name:   "valid_spec",
			mutate: func(spec *CreateListingSpec) {},
		},
		{
			name:    "blank_title",
			mutate:  func(spec *CreateListingSpec) { spec.Title = "   " },
			wantErr: true,
		},
		{
			name:    "title_too_long",
			mutate:  func(spec *CreateListingSpec) { spec.Title = strings.Repeat("x", domain.MaxTitleLength+1) },
			wantErr: true,
		},
		{
			// Bounds count characters: a 16-character Korean title is 48
			// bytes and still valid.
			name:   "multibyte_title_at_limit",
			mutate: func(spec *CreateListingSpec) { spec.Title = strings.Repeat("한", domain.MaxTitleLength) },
		},
		{
			name:    "multibyte_title_too_long",
			mutate:  func(spec *CreateListingSpec) { spec.Title = strings.Repeat("한", domain.MaxTitleLength+1) },
			wantErr: true,
		},
		{
			name: "multibyte_description_at_limit",
			mutate: func(spec *CreateListingSpec) {
				spec.Description = strings.Repeat("가", domain.MaxDescriptionLen)
			},
		},
		{
			name:    "blank_description",
			mutate:  func(spec *CreateListingSpec) { spec.Description = "" },
			wantErr: true,
		},
		{
			name:    "description_too_long",
			mutate:  func(spec *CreateListingSpec) { spec.Description = strings.Repeat("x", domain.MaxDescriptionLen+1) },
			wantErr: true,
		},
		{
			name:    "too_many_images",
			mutate:  func(spec *CreateListingSpec) { spec.Images = []string{"1", "2", "3", "4", "5", "6"} },
			wantErr: true,
		},
		{
			name:    "floor_price_below_minimum",
			mutate:  func(spec *CreateListingSpec) { spec.FloorPrice = 999 },
			wantErr: true,
		},
		{
			name:    "missing_seller",
			mutate:  func(spec *CreateListingSpec) { spec.SellerID = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			spec := valid
			tt.mutate(&spec)

			listing, err := f.catalog.CreateListing(context.Background(), spec, now)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidListing)
				return
			}

			require.NoError(t, err)
			require.True(t, listing.Open)
			require.Equal(t, now.Add(testListingDuration), listing.ExpireAt)
			require.Equal(t, spec.FloorPrice, listing.FloorPrice)
			require.Equal(t, spec.FloorPrice, listing.HighestPrice)

			stored, err := f.catalog.GetListing(context.Background(), listing.ID)
			require.NoError(t, err)
			require.Equal(t, listing.ID, stored.ID)
		})
	}
}

func TestCatalogService_GetListing_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.GetListing(context.Background(), "listing-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogService_ForceClose_Idempotent(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	listing := f.createListing(t, "seller-1", 10000, now)

	require.NoError(t, f.catalog.ForceClose(context.Background(), listing.ID, now))

	stored, err := f.catalog.GetListing(context.Background(), listing.ID)
	require.NoError(t, err)
	require.False(t, stored.Open)

	// Second close is a no-op, not an error.
	require.NoError(t, f.catalog.ForceClose(context.Background(), listing.ID, now))

	require.ErrorIs(t, f.catalog.ForceClose(context.Background(), "listing-missing", now), domain.ErrNotFound)
}

func TestCatalogService_IsBiddable(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	listing := f.createListing(t, "seller-1", 10000, now)

	biddable, err := f.catalog.IsBiddable(context.Background(), listing.ID, now)
	require.NoError(t, err)
	require.True(t, biddable)

	// Expired listings are not biddable even while still open.
	biddable, err = f.catalog.IsBiddable(context.Background(), listing.ID, listing.ExpireAt)
	require.NoError(t, err)
	require.False(t, biddable)

	require.NoError(t, f.catalog.ForceClose(context.Background(), listing.ID, now))
	biddable, err = f.catalog.IsBiddable(context.Background(), listing.ID, now)
	require.NoError(t, err)
	require.False(t, biddable)
}

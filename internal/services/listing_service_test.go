package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"petaria-auction/internal/domain"
	"petaria-auction/pkg/logger"
)

func int64Ptr(v int64) *int64 { return &v }

func TestListingService_CreateAuction(t *testing.T) {
	validParams := domain.CreateAuctionParams{
		ItemID:        "item-sword",
		StartingPrice: 100,
		MinIncrement:  10,
		DurationHours: 24,
	}

	tests := []struct {
		name     string
		sellerID string
		params   domain.CreateAuctionParams
		setup    func(w *fakeWorld)
		wantErr  error
	}{
		{
			name:     "valid_listing",
			sellerID: "seller-1",
			params:   validParams,
			setup: func(w *fakeWorld) {
				w.inventory["seller-1/item-sword"] = 2
			},
		},
		{
			name:     "item_not_owned",
			sellerID: "seller-1",
			params:   validParams,
			setup:    func(w *fakeWorld) {},
			wantErr:  domain.ErrItemNotOwned,
		},
		{
			name:     "zero_starting_price",
			sellerID: "seller-1",
			params: domain.CreateAuctionParams{
				ItemID: "item-sword", StartingPrice: 0, MinIncrement: 10, DurationHours: 24,
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:     "zero_increment",
			sellerID: "seller-1",
			params: domain.CreateAuctionParams{
				ItemID: "item-sword", StartingPrice: 100, MinIncrement: 0, DurationHours: 24,
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:     "buy_now_not_above_starting",
			sellerID: "seller-1",
			params: domain.CreateAuctionParams{
				ItemID: "item-sword", StartingPrice: 100, BuyNowPrice: int64Ptr(100),
				MinIncrement: 10, DurationHours: 24,
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:     "duration_too_short",
			sellerID: "seller-1",
			params: domain.CreateAuctionParams{
				ItemID: "item-sword", StartingPrice: 100, MinIncrement: 10, DurationHours: 0.25,
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:     "duration_too_long",
			sellerID: "seller-1",
			params: domain.CreateAuctionParams{
				ItemID: "item-sword", StartingPrice: 100, MinIncrement: 10, DurationHours: 169,
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing_seller",
			params:  validParams,
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := newFakeWorld()
			if tt.setup != nil {
				tt.setup(world)
			}
			cache := newFakeStateCache()
			svc := NewListingService(world, cache, logger.NewNop())

			auction, err := svc.CreateAuction(context.Background(), tt.sellerID, tt.params)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, auction)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, auction.ID)
			require.Equal(t, domain.AuctionActive, auction.Status)
			require.Equal(t, tt.params.StartingPrice, auction.CurrentBid)
			require.WithinDuration(t,
				time.Now().Add(time.Duration(tt.params.DurationHours*float64(time.Hour))),
				auction.EndTime, 2*time.Second)

			stored, ok := world.auctions[auction.ID]
			require.True(t, ok)
			require.Equal(t, tt.sellerID, stored.SellerID)

			// One unit left the seller's inventory.
			require.Equal(t, 1, world.quantity(tt.sellerID, tt.params.ItemID))

			status, cached, err := cache.GetAuctionStatus(context.Background(), auction.ID)
			require.NoError(t, err)
			require.True(t, cached)
			require.Equal(t, domain.AuctionActive, status)
		})
	}
}

func TestListingService_CreateAuction_LastUnitListsOnce(t *testing.T) {
	world := newFakeWorld()
	world.inventory["seller-1/item-rare"] = 1
	svc := NewListingService(world, newFakeStateCache(), logger.NewNop())

	params := domain.CreateAuctionParams{
		ItemID:        "item-rare",
		StartingPrice: 50,
		MinIncrement:  5,
		DurationHours: 1,
	}

	_, err := svc.CreateAuction(context.Background(), "seller-1", params)
	require.NoError(t, err)

	_, err = svc.CreateAuction(context.Background(), "seller-1", params)
	require.ErrorIs(t, err, domain.ErrItemNotOwned)
	require.Len(t, world.auctions, 1)
}

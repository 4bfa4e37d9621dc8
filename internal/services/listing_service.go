package services

import (
	"context"
	"fmt"
	"time"

	"petaria-auction/internal/domain"
	"petaria-auction/pkg/logger"
	"petaria-auction/pkg/utils"
)

type ListingService struct {
	uow        domain.UnitOfWork
	stateCache domain.AuctionStateCache
	log        logger.Logger
}

func NewListingService(uow domain.UnitOfWork, stateCache domain.AuctionStateCache, log logger.Logger) *ListingService {
	return &ListingService{
		uow:        uow,
		stateCache: stateCache,
		log:        log,
	}
}

// CreateAuction lists one unit of the seller's item for auction. The unit
// leaves the seller's inventory and the auction row appears in the same
// transaction, so the item is never both tradeable and listed.
func (s *ListingService) CreateAuction(ctx context.Context, sellerID string, params domain.CreateAuctionParams) (*domain.Auction, error) {
	if err := validateCreateParams(sellerID, params); err != nil {
		return nil, err
	}

	now := time.Now()
	duration := time.Duration(params.DurationHours * float64(time.Hour))
	auction := &domain.Auction{
		ID:            utils.GenerateID("auction"),
		ItemID:        params.ItemID,
		SellerID:      sellerID,
		StartingPrice: params.StartingPrice,
		CurrentBid:    params.StartingPrice,
		BuyNowPrice:   params.BuyNowPrice,
		MinIncrement:  params.MinIncrement,
		EndTime:       now.Add(duration),
		Status:        domain.AuctionActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.uow.Do(ctx, func(ops domain.TxOps) error {
		owns, err := ops.Inventory().OwnsUnit(ctx, sellerID, params.ItemID)
		if err != nil {
			return err
		}
		if !owns {
			return domain.ErrItemNotOwned
		}
		if err := ops.Inventory().RemoveUnit(ctx, sellerID, params.ItemID); err != nil {
			return err
		}
		return ops.Auctions().Create(ctx, auction)
	})
	if err != nil {
		return nil, err
	}

	if err := s.stateCache.SetAuctionStatus(ctx, auction.ID, domain.AuctionActive); err != nil {
		s.log.Warn("Failed to cache auction status", "auction_id", auction.ID, "error", err)
	}

	s.log.Info("Auction created", "auction_id", auction.ID,
		"seller_id", sellerID, "item_id", params.ItemID, "end_time", auction.EndTime)
	return auction, nil
}

func validateCreateParams(sellerID string, params domain.CreateAuctionParams) error {
	if sellerID == "" || params.ItemID == "" {
		return fmt.Errorf("%w: missing seller or item", domain.ErrInvalidInput)
	}
	if params.StartingPrice < 1 {
		return fmt.Errorf("%w: starting price must be at least 1", domain.ErrInvalidInput)
	}
	if params.MinIncrement < 1 {
		return fmt.Errorf("%w: minimum increment must be at least 1", domain.ErrInvalidInput)
	}
	if params.BuyNowPrice != nil && *params.BuyNowPrice <= params.StartingPrice {
		return fmt.Errorf("%w: buy-now price must exceed starting price", domain.ErrInvalidInput)
	}
	if params.DurationHours < domain.MinDurationHours || params.DurationHours > domain.MaxDurationHours {
		return fmt.Errorf("%w: duration must be between %.1f and %d hours",
			domain.ErrInvalidInput, domain.MinDurationHours, domain.MaxDurationHours)
	}
	return nil
}

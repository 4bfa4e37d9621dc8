package services

import (
	"context"
	"fmt"
	"time"

	"petaria-auction/internal/domain"
	"petaria-auction/pkg/logger"
	"petaria-auction/pkg/utils"
)

type BiddingService struct {
	uow    domain.UnitOfWork
	events domain.EventPublisher
	log    logger.Logger
}

func NewBiddingService(uow domain.UnitOfWork, events domain.EventPublisher, log logger.Logger) *BiddingService {
	return &BiddingService{
		uow:    uow,
		events: events,
		log:    log,
	}
}

// PlaceBid escrows the bidder's stake and installs the bid as the auction's
// current high. The auction row is locked for the whole transaction, so
// concurrent bids on the same auction serialize and each sees the minimum
// left by the previous one.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, bidderID string, amount int64) (*domain.Bid, error) {
	if auctionID == "" || bidderID == "" {
		return nil, fmt.Errorf("%w: missing auction or bidder", domain.ErrInvalidInput)
	}

	var bid *domain.Bid
	err := s.uow.Do(ctx, func(ops domain.TxOps) error {
		auction, err := ops.Auctions().GetForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}

		now := time.Now()
		if auction.Status != domain.AuctionActive {
			return domain.ErrAuctionInactive
		}
		if !now.Before(auction.EndTime) {
			return domain.ErrAuctionEnded
		}
		if bidderID == auction.SellerID {
			return domain.ErrSellerCannotBid
		}

		minimum := auction.CurrentBid + auction.MinIncrement
		if amount < minimum {
			return fmt.Errorf("%w: minimum acceptable bid is %d", domain.ErrBidTooLow, minimum)
		}

		if err := ops.Ledger().Debit(ctx, bidderID, amount); err != nil {
			return err
		}

		// A bidder raising their own high bid displaces nobody. Their
		// earlier stake stays escrowed until someone else outbids them.
		displaced, err := ops.Bids().HighestActiveExcluding(ctx, auctionID, bidderID)
		if err != nil {
			return err
		}
		if displaced != nil {
			if err := ops.Ledger().Credit(ctx, displaced.BidderID, displaced.Amount); err != nil {
				return err
			}
			if err := ops.Bids().SetStatus(ctx, displaced.ID, domain.BidRefunded); err != nil {
				return err
			}
		}

		bid = &domain.Bid{
			ID:        utils.GenerateID("bid"),
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			Status:    domain.BidActive,
			CreatedAt: now,
		}
		if err := ops.Bids().Append(ctx, bid); err != nil {
			return err
		}
		return ops.Auctions().SetCurrentBid(ctx, auctionID, amount)
	})
	if err != nil {
		return nil, err
	}

	event := &domain.AuctionEvent{
		Type:      domain.EventBidAccepted,
		AuctionID: auctionID,
		UserID:    bidderID,
		Amount:    amount,
		Timestamp: time.Now(),
	}
	if err := s.events.PublishAuctionEvent(ctx, event); err != nil {
		s.log.Warn("Failed to publish bid event", "auction_id", auctionID, "error", err)
	}

	s.log.Info("Bid accepted", "auction_id", auctionID, "bidder_id", bidderID, "amount", amount)
	return bid, nil
}

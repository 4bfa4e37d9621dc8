package services

import (
	"context"
	"fmt"
	"time"

	"petaria-auction/internal/domain"
	"petaria-auction/pkg/logger"
)

type SettlementService struct {
	uow        domain.UnitOfWork
	events     domain.EventPublisher
	stateCache domain.AuctionStateCache
	log        logger.Logger
}

func NewSettlementService(uow domain.UnitOfWork, events domain.EventPublisher, stateCache domain.AuctionStateCache, log logger.Logger) *SettlementService {
	return &SettlementService{
		uow:        uow,
		events:     events,
		stateCache: stateCache,
		log:        log,
	}
}

// BuyNow ends the auction immediately at the buy-now price. Every escrowed
// bid is refunded, the seller is paid, and the item goes to the buyer, all
// in one transaction.
func (s *SettlementService) BuyNow(ctx context.Context, auctionID, buyerID string) (*domain.Auction, error) {
	if auctionID == "" || buyerID == "" {
		return nil, fmt.Errorf("%w: missing auction or buyer", domain.ErrInvalidInput)
	}

	var auction *domain.Auction
	var price int64
	err := s.uow.Do(ctx, func(ops domain.TxOps) error {
		a, err := ops.Auctions().GetForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if a.Status != domain.AuctionActive {
			return domain.ErrAuctionInactive
		}
		if a.BuyNowPrice == nil {
			return domain.ErrNoBuyNow
		}
		if buyerID == a.SellerID {
			return domain.ErrSellerCannotBuy
		}
		price = *a.BuyNowPrice

		if err := ops.Ledger().Debit(ctx, buyerID, price); err != nil {
			return err
		}

		active, err := ops.Bids().ListActive(ctx, auctionID)
		if err != nil {
			return err
		}
		for _, b := range active {
			if err := ops.Ledger().Credit(ctx, b.BidderID, b.Amount); err != nil {
				return err
			}
			if err := ops.Bids().SetStatus(ctx, b.ID, domain.BidRefunded); err != nil {
				return err
			}
		}

		if err := ops.Ledger().Credit(ctx, a.SellerID, price); err != nil {
			return err
		}
		if err := ops.Inventory().AddUnit(ctx, buyerID, a.ItemID); err != nil {
			return err
		}
		if err := ops.Auctions().SetStatus(ctx, auctionID, domain.AuctionEnded); err != nil {
			return err
		}

		a.Status = domain.AuctionEnded
		auction = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.finishAuction(ctx, &domain.AuctionEvent{
		Type:      domain.EventAuctionSold,
		AuctionID: auctionID,
		UserID:    buyerID,
		Amount:    price,
		Timestamp: time.Now(),
	})

	s.log.Info("Auction sold via buy-now", "auction_id", auctionID, "buyer_id", buyerID, "price", price)
	return auction, nil
}

// SettleExpired closes an auction whose end time has passed. It is safe to
// call for any auction id: rows that are no longer active, or not yet due,
// are skipped without effect, so a sweep racing a buy-now does no harm.
func (s *SettlementService) SettleExpired(ctx context.Context, auctionID string) error {
	var event *domain.AuctionEvent
	err := s.uow.Do(ctx, func(ops domain.TxOps) error {
		a, err := ops.Auctions().GetForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if a.Status != domain.AuctionActive || time.Now().Before(a.EndTime) {
			return nil
		}

		winner, err := ops.Bids().HighestActive(ctx, auctionID)
		if err != nil {
			return err
		}

		if winner == nil {
			// Nobody bid. The unit goes back to the seller.
			if err := ops.Inventory().AddUnit(ctx, a.SellerID, a.ItemID); err != nil {
				return err
			}
			if err := ops.Auctions().SetStatus(ctx, auctionID, domain.AuctionEnded); err != nil {
				return err
			}
			event = &domain.AuctionEvent{
				Type:      domain.EventAuctionExpired,
				AuctionID: auctionID,
				Timestamp: time.Now(),
			}
			return nil
		}

		active, err := ops.Bids().ListActive(ctx, auctionID)
		if err != nil {
			return err
		}
		for _, b := range active {
			if b.ID == winner.ID {
				continue
			}
			if err := ops.Ledger().Credit(ctx, b.BidderID, b.Amount); err != nil {
				return err
			}
			if err := ops.Bids().SetStatus(ctx, b.ID, domain.BidRefunded); err != nil {
				return err
			}
		}

		// The winner's stake becomes the payment: credited to the seller,
		// never refunded.
		if err := ops.Ledger().Credit(ctx, a.SellerID, winner.Amount); err != nil {
			return err
		}
		if err := ops.Bids().SetStatus(ctx, winner.ID, domain.BidWon); err != nil {
			return err
		}
		if err := ops.Inventory().AddUnit(ctx, winner.BidderID, a.ItemID); err != nil {
			return err
		}
		if err := ops.Auctions().SetStatus(ctx, auctionID, domain.AuctionEnded); err != nil {
			return err
		}

		event = &domain.AuctionEvent{
			Type:      domain.EventAuctionSettled,
			AuctionID: auctionID,
			UserID:    winner.BidderID,
			Amount:    winner.Amount,
			Timestamp: time.Now(),
		}
		return nil
	})
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}

	s.finishAuction(ctx, event)
	s.log.Info("Auction settled", "auction_id", auctionID, "event", event.Type,
		"winner_id", event.UserID, "amount", event.Amount)
	return nil
}

func (s *SettlementService) finishAuction(ctx context.Context, event *domain.AuctionEvent) {
	if err := s.stateCache.SetAuctionStatus(ctx, event.AuctionID, domain.AuctionEnded); err != nil {
		s.log.Warn("Failed to update auction status cache", "auction_id", event.AuctionID, "error", err)
	}
	if err := s.events.PublishAuctionEvent(ctx, event); err != nil {
		s.log.Warn("Failed to publish auction event", "auction_id", event.AuctionID,
			"event", event.Type, "error", err)
	}
}

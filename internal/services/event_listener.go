package services

import (
	"context"
	"time"

	"petaria-auction/internal/domain"
	"petaria-auction/pkg/logger"
)

// EventListener turns published auction events into websocket pushes for
// the watchers of the affected auction.
type EventListener struct {
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewEventListener(connManager domain.ConnectionManager, log logger.Logger) *EventListener {
	return &EventListener{
		connManager: connManager,
		log:         log,
	}
}

func (l *EventListener) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	return subscriber.SubscribeToAuctionEvents(ctx, l.HandleAuctionEvent)
}

type auctionUpdate struct {
	Type      string    `json:"type"`
	AuctionID string    `json:"auction_id"`
	UserID    string    `json:"user_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (l *EventListener) HandleAuctionEvent(event *domain.AuctionEvent) error {
	update := auctionUpdate{
		Type:      string(event.Type),
		AuctionID: event.AuctionID,
		UserID:    event.UserID,
		Amount:    event.Amount,
		Timestamp: event.Timestamp,
	}
	if err := l.connManager.BroadcastToAuction(event.AuctionID, update); err != nil {
		l.log.Error("Failed to broadcast auction event", "auction_id", event.AuctionID,
			"event", event.Type, "error", err)
	}

	switch event.Type {
	case domain.EventAuctionSold, domain.EventAuctionSettled, domain.EventAuctionExpired:
		if err := l.connManager.CloseAndUnregisterConnections(event.AuctionID); err != nil {
			l.log.Error("Failed to close auction connections", "auction_id", event.AuctionID, "error", err)
		}
	}
	return nil
}

package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"petaria-auction/internal/domain"
	"petaria-auction/pkg/logger"
)

type recordingConnManager struct {
	mu         sync.Mutex
	broadcasts []interface{}
	closed     []string
}

func (m *recordingConnManager) RegisterConnection(userID, auctionID string, conn domain.WebSocketConnection) error {
	return nil
}

func (m *recordingConnManager) UnregisterConnection(userID, auctionID string, conn domain.WebSocketConnection) error {
	return nil
}

func (m *recordingConnManager) BroadcastToAuction(auctionID string, message interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, message)
	return nil
}

func (m *recordingConnManager) CloseAndUnregisterConnections(auctionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, auctionID)
	return nil
}

func TestEventListener_BroadcastsBidEvents(t *testing.T) {
	manager := &recordingConnManager{}
	listener := NewEventListener(manager, logger.NewNop())

	err := listener.HandleAuctionEvent(&domain.AuctionEvent{
		Type:      domain.EventBidAccepted,
		AuctionID: "a1",
		UserID:    "bidder-1",
		Amount:    120,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, manager.broadcasts, 1)
	update, ok := manager.broadcasts[0].(auctionUpdate)
	require.True(t, ok)
	require.Equal(t, "bid_accepted", update.Type)
	require.Equal(t, int64(120), update.Amount)

	// Bid events keep the feed open.
	require.Empty(t, manager.closed)
}

func TestEventListener_ClosesFeedOnTerminalEvents(t *testing.T) {
	terminal := []domain.AuctionEventType{
		domain.EventAuctionSold,
		domain.EventAuctionSettled,
		domain.EventAuctionExpired,
	}

	for _, eventType := range terminal {
		t.Run(string(eventType), func(t *testing.T) {
			manager := &recordingConnManager{}
			listener := NewEventListener(manager, logger.NewNop())

			err := listener.HandleAuctionEvent(&domain.AuctionEvent{
				Type:      eventType,
				AuctionID: "a1",
				Timestamp: time.Now(),
			})
			require.NoError(t, err)

			// Watchers get the final update before the feed closes.
			require.Len(t, manager.broadcasts, 1)
			require.Equal(t, []string{"a1"}, manager.closed)
		})
	}
}

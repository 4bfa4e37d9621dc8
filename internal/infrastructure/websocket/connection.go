package websocket

import (
	"sync"

	"github.com/gorilla/websocket"

	"petaria-auction/pkg/logger"
)

// WebSocketConnection wraps a gorilla connection for one watcher of one
// auction. Writes are serialized; gorilla connections do not allow
// concurrent writers.
type WebSocketConnection struct {
	conn      *websocket.Conn
	userID    string
	auctionID string
	writeMu   sync.Mutex
	log       logger.Logger
}

func NewWebSocketConnection(conn *websocket.Conn, userID, auctionID string, log logger.Logger) *WebSocketConnection {
	return &WebSocketConnection{
		conn:      conn,
		userID:    userID,
		auctionID: auctionID,
		log:       log,
	}
}

func (c *WebSocketConnection) Send(message []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (c *WebSocketConnection) Close() error {
	return c.conn.Close()
}

func (c *WebSocketConnection) UserID() string {
	return c.userID
}

func (c *WebSocketConnection) AuctionID() string {
	return c.auctionID
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"petaria-auction/internal/domain"
	ws "petaria-auction/internal/infrastructure/websocket"
	"petaria-auction/internal/services"
	"petaria-auction/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler serves the live feed for one auction. Admission is
// checked against the status cache first, then the database on a miss.
type WebSocketHandler struct {
	queries     *services.QueryService
	stateCache  domain.AuctionStateCache
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewWebSocketHandler(queries *services.QueryService, stateCache domain.AuctionStateCache,
	connManager domain.ConnectionManager, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		queries:     queries,
		stateCache:  stateCache,
		connManager: connManager,
		log:         log,
	}
}

func (h *WebSocketHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/auctions/:id", h.HandleConnection)
}

func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	auctionID := c.Param("id")

	// Browsers cannot set custom headers on websocket dials, so the user
	// id may arrive as a query parameter instead.
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		userID = c.QueryParam("user_id")
	}
	if userID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: "user id required"})
	}

	ctx := c.Request().Context()
	status, cached, err := h.stateCache.GetAuctionStatus(ctx, auctionID)
	if err != nil {
		h.log.Warn("Status cache lookup failed", "auction_id", auctionID, "error", err)
		cached = false
	}
	if !cached {
		detail, err := h.queries.GetAuction(ctx, auctionID)
		if err != nil {
			return h.admissionError(c, err)
		}
		status = domain.AuctionStatus(detail.Status)
	}
	if status != domain.AuctionActive {
		return c.JSON(http.StatusConflict, errorResponse{Error: "auction_inactive", Message: "auction is no longer active"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "auction_id", auctionID, "error", err)
		return nil
	}

	wsConn := ws.NewWebSocketConnection(conn, userID, auctionID, h.log)
	if err := h.connManager.RegisterConnection(userID, auctionID, wsConn); err != nil {
		h.log.Error("Failed to register connection", "auction_id", auctionID, "error", err)
		conn.Close()
		return nil
	}

	h.log.Info("Watcher connected", "auction_id", auctionID, "user_id", userID)
	go h.readLoop(conn, wsConn)
	return nil
}

// readLoop drains client frames until the peer goes away. The feed is
// one-way; inbound frames are discarded. Teardown identifies itself to the
// registry, so a loop outliving a reconnect cannot evict the replacement.
func (h *WebSocketHandler) readLoop(conn *websocket.Conn, wsConn *ws.WebSocketConnection) {
	defer func() {
		if err := h.connManager.UnregisterConnection(wsConn.UserID(), wsConn.AuctionID(), wsConn); err != nil {
			h.log.Debug("Failed to unregister connection", "auction_id", wsConn.AuctionID(), "error", err)
		}
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WebSocketHandler) admissionError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not_found", Message: "auction not found"})
	}
	h.log.Error("Admission check failed", "error", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal server error"})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"petaria-auction/internal/domain"
	"petaria-auction/internal/services"
	"petaria-auction/pkg/logger"
)

type AuctionHandler struct {
	listing    *services.ListingService
	bidding    *services.BiddingService
	settlement *services.SettlementService
	queries    *services.QueryService
	log        logger.Logger
}

func NewAuctionHandler(listing *services.ListingService, bidding *services.BiddingService,
	settlement *services.SettlementService, queries *services.QueryService, log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		listing:    listing,
		bidding:    bidding,
		settlement: settlement,
		queries:    queries,
		log:        log,
	}
}

type CreateAuctionRequest struct {
	ItemID        string  `json:"item_id"`
	StartingPrice int64   `json:"starting_price"`
	BuyNowPrice   *int64  `json:"buy_now_price,omitempty"`
	MinIncrement  int64   `json:"min_increment"`
	DurationHours float64 `json:"duration_hours"`
}

type PlaceBidRequest struct {
	Amount int64 `json:"amount"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *AuctionHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.GET("/auctions", h.ListAuctions)
	api.POST("/auctions", h.CreateAuction)
	api.GET("/auctions/:id", h.GetAuction)
	api.POST("/auctions/:id/bids", h.PlaceBid)
	api.POST("/auctions/:id/buy", h.BuyNow)
	api.GET("/sellers/:id/auctions", h.ListSellerAuctions)
	api.GET("/users/:id/balance", h.GetBalance)
}

func (h *AuctionHandler) CreateAuction(c echo.Context) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var req CreateAuctionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: "invalid request body"})
	}

	auction, err := h.listing.CreateAuction(c.Request().Context(), principal.ID, domain.CreateAuctionParams{
		ItemID:        req.ItemID,
		StartingPrice: req.StartingPrice,
		BuyNowPrice:   req.BuyNowPrice,
		MinIncrement:  req.MinIncrement,
		DurationHours: req.DurationHours,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, auction)
}

func (h *AuctionHandler) ListAuctions(c echo.Context) error {
	query := domain.ListQuery{
		Page:     intQueryParam(c, "page", 1),
		Limit:    intQueryParam(c, "limit", 0),
		Search:   c.QueryParam("search"),
		SortBy:   c.QueryParam("sort_by"),
		Order:    c.QueryParam("order"),
		SellerID: c.QueryParam("seller_id"),
	}

	page, err := h.queries.ListAuctions(c.Request().Context(), query)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *AuctionHandler) GetAuction(c echo.Context) error {
	detail, err := h.queries.GetAuction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *AuctionHandler) PlaceBid(c echo.Context) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: "invalid request body"})
	}

	bid, err := h.bidding.PlaceBid(c.Request().Context(), c.Param("id"), principal.ID, req.Amount)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, bid)
}

func (h *AuctionHandler) BuyNow(c echo.Context) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	auction, err := h.settlement.BuyNow(c.Request().Context(), c.Param("id"), principal.ID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, auction)
}

func (h *AuctionHandler) ListSellerAuctions(c echo.Context) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	auctions, err := h.queries.ListSellerAuctions(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, auctions)
}

func (h *AuctionHandler) GetBalance(c echo.Context) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	userID := c.Param("id")
	if principal.ID != userID && principal.Role != domain.RoleAdmin {
		return h.writeError(c, domain.ErrForbidden)
	}

	balance, err := h.queries.GetBalance(c.Request().Context(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, balance)
}

// writeError maps domain failures onto stable wire errors. Anything
// unrecognized is an internal error and never leaks its details.
func (h *AuctionHandler) writeError(c echo.Context, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			return c.JSON(m.status, errorResponse{Error: m.kind, Message: err.Error()})
		}
	}
	h.log.Error("Request failed", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal server error"})
}

var errorMappings = []struct {
	sentinel error
	status   int
	kind     string
}{
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrBidTooLow, http.StatusBadRequest, "bid_too_low"},
	{domain.ErrInsufficientFunds, http.StatusPaymentRequired, "insufficient_funds"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrSellerCannotBid, http.StatusForbidden, "seller_cannot_bid"},
	{domain.ErrSellerCannotBuy, http.StatusForbidden, "seller_cannot_buy"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrAuctionInactive, http.StatusConflict, "auction_inactive"},
	{domain.ErrAuctionEnded, http.StatusConflict, "auction_ended"},
	{domain.ErrNoBuyNow, http.StatusConflict, "no_buy_now"},
	{domain.ErrItemNotOwned, http.StatusConflict, "item_not_owned"},
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

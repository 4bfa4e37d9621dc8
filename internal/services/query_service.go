package services

import (
	"context"
	"strings"

	"petaria-auction/internal/domain"
	"petaria-auction/pkg/logger"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var allowedSortFields = map[string]bool{
	"end_time":       true,
	"current_bid":    true,
	"starting_price": true,
	"created_at":     true,
}

type QueryService struct {
	queries  domain.AuctionQueries
	balances domain.BalanceQueries
	log      logger.Logger
}

func NewQueryService(queries domain.AuctionQueries, balances domain.BalanceQueries, log logger.Logger) *QueryService {
	return &QueryService{
		queries:  queries,
		balances: balances,
		log:      log,
	}
}

// ListAuctions returns a page of active auctions. Out-of-range paging and
// unknown sort parameters degrade to defaults rather than erroring.
func (s *QueryService) ListAuctions(ctx context.Context, query domain.ListQuery) (*domain.AuctionPage, error) {
	normalizeQuery(&query)
	return s.queries.List(ctx, query)
}

func (s *QueryService) GetAuction(ctx context.Context, auctionID string) (*domain.AuctionDetail, error) {
	if auctionID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.queries.Get(ctx, auctionID)
}

// ListSellerAuctions returns all of a seller's auctions regardless of
// status. Only the seller themselves or an admin may see the list.
func (s *QueryService) ListSellerAuctions(ctx context.Context, principal domain.Principal, sellerID string) ([]domain.AuctionSummary, error) {
	if sellerID == "" {
		return nil, domain.ErrInvalidInput
	}
	if principal.ID != sellerID && principal.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.queries.BySeller(ctx, sellerID)
}

func (s *QueryService) GetBalance(ctx context.Context, userID string) (*domain.Balance, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.balances.GetBalance(ctx, userID)
}

func normalizeQuery(q *domain.ListQuery) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	if !allowedSortFields[q.SortBy] {
		q.SortBy = "end_time"
	}
	switch strings.ToUpper(q.Order) {
	case "ASC", "DESC":
		q.Order = strings.ToUpper(q.Order)
	default:
		q.Order = "ASC"
	}
}

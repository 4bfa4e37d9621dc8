package mysql

import (
	"context"
	"database/sql"
	"errors"

	"petaria-auction/internal/domain"
)

type BidRepository struct {
	q querier
}

func NewBidRepository(q querier) *BidRepository {
	return &BidRepository{q: q}
}

func (r *BidRepository) Append(ctx context.Context, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, auction_id, bidder_id, amount, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := r.q.ExecContext(ctx, query,
		bid.ID, bid.AuctionID, bid.BidderID, bid.Amount,
		string(bid.Status), bid.CreatedAt)
	return err
}

func (r *BidRepository) HighestActive(ctx context.Context, auctionID string) (*domain.Bid, error) {
	query := `
        SELECT id, auction_id, bidder_id, amount, status, created_at
        FROM bids
        WHERE auction_id = ? AND status = 'active'
        ORDER BY amount DESC, created_at DESC
        LIMIT 1
    `
	return r.scanBid(r.q.QueryRowContext(ctx, query, auctionID))
}

func (r *BidRepository) HighestActiveExcluding(ctx context.Context, auctionID, bidderID string) (*domain.Bid, error) {
	query := `
        SELECT id, auction_id, bidder_id, amount, status, created_at
        FROM bids
        WHERE auction_id = ? AND bidder_id <> ? AND status = 'active'
        ORDER BY amount DESC, created_at DESC
        LIMIT 1
    `
	return r.scanBid(r.q.QueryRowContext(ctx, query, auctionID, bidderID))
}

func (r *BidRepository) ListActive(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	query := `
        SELECT id, auction_id, bidder_id, amount, status, created_at
        FROM bids
        WHERE auction_id = ? AND status = 'active'
        ORDER BY amount DESC, created_at DESC
    `
	rows, err := r.q.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		var bid domain.Bid
		var status string
		err := rows.Scan(&bid.ID, &bid.AuctionID, &bid.BidderID,
			&bid.Amount, &status, &bid.CreatedAt)
		if err != nil {
			return nil, err
		}
		bid.Status = domain.BidStatus(status)
		bids = append(bids, &bid)
	}
	return bids, rows.Err()
}

func (r *BidRepository) SetStatus(ctx context.Context, bidID string, status domain.BidStatus) error {
	query := `UPDATE bids SET status = ? WHERE id = ?`
	_, err := r.q.ExecContext(ctx, query, string(status), bidID)
	return err
}

// scanBid maps a single-row query; no matching bid is (nil, nil), not an
// error, since "no stake to refund" is a normal outcome.
func (r *BidRepository) scanBid(row *sql.Row) (*domain.Bid, error) {
	var bid domain.Bid
	var status string

	err := row.Scan(&bid.ID, &bid.AuctionID, &bid.BidderID,
		&bid.Amount, &status, &bid.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	bid.Status = domain.BidStatus(status)
	return &bid, nil
}

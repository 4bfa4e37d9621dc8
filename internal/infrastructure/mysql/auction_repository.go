package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"petaria-auction/internal/domain"
)

type AuctionRepository struct {
	q querier
}

func NewAuctionRepository(q querier) *AuctionRepository {
	return &AuctionRepository{q: q}
}

func (r *AuctionRepository) Create(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, item_id, seller_id, starting_price, current_bid,
                              buy_now_price, min_increment, end_time, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	var buyNow sql.NullInt64
	if auction.BuyNowPrice != nil {
		buyNow = sql.NullInt64{Int64: *auction.BuyNowPrice, Valid: true}
	}
	_, err := r.q.ExecContext(ctx, query,
		auction.ID, auction.ItemID, auction.SellerID,
		auction.StartingPrice, auction.CurrentBid, buyNow,
		auction.MinIncrement, auction.EndTime, string(auction.Status),
		auction.CreatedAt, auction.UpdatedAt)
	return err
}

// GetForUpdate locks the auction row for the rest of the transaction.
// Concurrent bids and settlements on the same auction serialize here;
// other auctions are untouched.
func (r *AuctionRepository) GetForUpdate(ctx context.Context, auctionID string) (*domain.Auction, error) {
	query := `
        SELECT id, item_id, seller_id, starting_price, current_bid,
               buy_now_price, min_increment, end_time, status, created_at, updated_at
        FROM auctions WHERE id = ? FOR UPDATE
    `
	return r.scanAuction(r.q.QueryRowContext(ctx, query, auctionID))
}

func (r *AuctionRepository) SetCurrentBid(ctx context.Context, auctionID string, amount int64) error {
	query := `UPDATE auctions SET current_bid = ?, updated_at = ? WHERE id = ?`
	_, err := r.q.ExecContext(ctx, query, amount, time.Now(), auctionID)
	return err
}

func (r *AuctionRepository) SetStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	query := `UPDATE auctions SET status = ?, updated_at = ? WHERE id = ?`
	_, err := r.q.ExecContext(ctx, query, string(status), time.Now(), auctionID)
	return err
}

func (r *AuctionRepository) scanAuction(row *sql.Row) (*domain.Auction, error) {
	var auction domain.Auction
	var buyNow sql.NullInt64
	var status string

	err := row.Scan(&auction.ID, &auction.ItemID, &auction.SellerID,
		&auction.StartingPrice, &auction.CurrentBid, &buyNow,
		&auction.MinIncrement, &auction.EndTime, &status,
		&auction.CreatedAt, &auction.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if buyNow.Valid {
		auction.BuyNowPrice = &buyNow.Int64
	}
	auction.Status = domain.AuctionStatus(status)
	return &auction, nil
}

package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"petaria-auction/internal/domain"
)

// QueryRepository serves the read-only side: listings, detail, expiry
// scans. It runs against the pool directly; nothing here mutates state.
type QueryRepository struct {
	db *sql.DB
}

func NewQueryRepository(db *sql.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

// sortColumns whitelists the ORDER BY targets; anything else falls back to
// end_time. The column name is interpolated, never the caller's input.
var sortColumns = map[string]string{
	"end_time":       "a.end_time",
	"current_bid":    "a.current_bid",
	"starting_price": "a.starting_price",
	"created_at":     "a.created_at",
}

func (r *QueryRepository) List(ctx context.Context, q domain.ListQuery) (*domain.AuctionPage, error) {
	where := `WHERE a.status = 'active'`
	args := []interface{}{}
	if q.Search != "" {
		where += ` AND i.name LIKE ?`
		args = append(args, "%"+q.Search+"%")
	}
	if q.SellerID != "" {
		where += ` AND a.seller_id = ?`
		args = append(args, q.SellerID)
	}

	countQuery := `
        SELECT COUNT(*)
        FROM auctions a JOIN items i ON i.id = a.item_id ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns["end_time"]
	}
	direction := "ASC"
	if q.Order == "DESC" {
		direction = "DESC"
	}

	listQuery := `
        SELECT a.id, a.item_id, i.name, a.seller_id, a.starting_price, a.current_bid,
               a.buy_now_price, a.min_increment, a.end_time, a.status, a.created_at
        FROM auctions a JOIN items i ON i.id = a.item_id ` + where + `
        ORDER BY ` + column + ` ` + direction + `, a.id ASC
        LIMIT ? OFFSET ?`
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.AuctionSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := (total + q.Limit - 1) / q.Limit
	return &domain.AuctionPage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
	}, nil
}

func (r *QueryRepository) Get(ctx context.Context, auctionID string) (*domain.AuctionDetail, error) {
	query := `
        SELECT a.id, a.item_id, i.name, a.seller_id, a.starting_price, a.current_bid,
               a.buy_now_price, a.min_increment, a.end_time, a.status, a.created_at
        FROM auctions a JOIN items i ON i.id = a.item_id
        WHERE a.id = ?
    `
	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrNotFound
	}
	summary, err := scanSummary(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	history, err := r.bidHistory(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	return &domain.AuctionDetail{
		AuctionSummary: *summary,
		Bids:           history,
	}, nil
}

func (r *QueryRepository) BySeller(ctx context.Context, sellerID string) ([]domain.AuctionSummary, error) {
	query := `
        SELECT a.id, a.item_id, i.name, a.seller_id, a.starting_price, a.current_bid,
               a.buy_now_price, a.min_increment, a.end_time, a.status, a.created_at
        FROM auctions a JOIN items i ON i.id = a.item_id
        WHERE a.seller_id = ?
        ORDER BY a.created_at DESC
    `
	rows, err := r.db.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	auctions := []domain.AuctionSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, *summary)
	}
	return auctions, rows.Err()
}

func (r *QueryRepository) ExpiredActiveIDs(ctx context.Context, now time.Time, limit int) ([]string, error) {
	query := `
        SELECT id FROM auctions
        WHERE status = 'active' AND end_time <= ?
        ORDER BY end_time ASC
        LIMIT ?
    `
	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *QueryRepository) bidHistory(ctx context.Context, auctionID string) ([]domain.BidRecord, error) {
	query := `
        SELECT bidder_id, amount, status, created_at
        FROM bids
        WHERE auction_id = ?
        ORDER BY amount DESC, created_at DESC
    `
	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []domain.BidRecord{}
	for rows.Next() {
		var record domain.BidRecord
		err := rows.Scan(&record.BidderID, &record.Amount, &record.Status, &record.BidTime)
		if err != nil {
			return nil, err
		}
		history = append(history, record)
	}
	return history, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(row rowScanner) (*domain.AuctionSummary, error) {
	var summary domain.AuctionSummary
	var buyNow sql.NullInt64

	err := row.Scan(&summary.ID, &summary.ItemID, &summary.ItemName, &summary.SellerID,
		&summary.StartingPrice, &summary.CurrentBid, &buyNow,
		&summary.MinIncrement, &summary.EndTime, &summary.Status, &summary.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if buyNow.Valid {
		summary.BuyNowPrice = &buyNow.Int64
	}
	return &summary, nil
}

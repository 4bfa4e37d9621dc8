package mysql

import (
	"context"
	"database/sql"
	"errors"

	"petaria-auction/internal/domain"
)

type InventoryRepository struct {
	q querier
}

func NewInventoryRepository(q querier) *InventoryRepository {
	return &InventoryRepository{q: q}
}

func (r *InventoryRepository) OwnsUnit(ctx context.Context, userID, itemID string) (bool, error) {
	query := `SELECT quantity FROM user_items WHERE user_id = ? AND item_id = ?`

	var quantity int64
	err := r.q.QueryRowContext(ctx, query, userID, itemID).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return quantity > 0, nil
}

// RemoveUnit takes one unit out of the user's inventory. The quantity guard
// lives in the statement itself; zero rows affected means the user holds
// nothing to remove.
func (r *InventoryRepository) RemoveUnit(ctx context.Context, userID, itemID string) error {
	query := `
        UPDATE user_items SET quantity = quantity - 1
        WHERE user_id = ? AND item_id = ? AND quantity >= 1
    `
	result, err := r.q.ExecContext(ctx, query, userID, itemID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrItemNotOwned
	}
	return nil
}

// AddUnit grants one unit, incrementing the quantity when the user already
// holds this item rather than creating a duplicate row.
func (r *InventoryRepository) AddUnit(ctx context.Context, userID, itemID string) error {
	query := `
        INSERT INTO user_items (user_id, item_id, quantity)
        VALUES (?, ?, 1)
        ON DUPLICATE KEY UPDATE quantity = quantity + 1
    `
	_, err := r.q.ExecContext(ctx, query, userID, itemID)
	return err
}

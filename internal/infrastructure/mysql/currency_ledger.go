package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"petaria-auction/internal/domain"
)

// CurrencyLedger mutates the peta balance and nothing else. Petagold is the
// premium currency and has no spend path in the auction engine; keeping the
// two apart here is what stops mixed-currency semantics leaking in.
type CurrencyLedger struct {
	q querier
}

func NewCurrencyLedger(q querier) *CurrencyLedger {
	return &CurrencyLedger{q: q}
}

// Debit subtracts amount from the user's peta balance. The balance check
// and the subtraction are one statement, so the balance can never go
// negative regardless of interleaving.
func (l *CurrencyLedger) Debit(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit amount must be positive", domain.ErrInvalidInput)
	}

	query := `UPDATE users SET peta = peta - ? WHERE id = ? AND peta >= ?`
	result, err := l.q.ExecContext(ctx, query, amount, userID, amount)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

func (l *CurrencyLedger) Credit(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", domain.ErrInvalidInput)
	}

	query := `UPDATE users SET peta = peta + ? WHERE id = ?`
	result, err := l.q.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("credit target %s: %w", userID, domain.ErrNotFound)
	}
	return nil
}

func (l *CurrencyLedger) GetBalance(ctx context.Context, userID string) (*domain.Balance, error) {
	query := `SELECT id, peta, petagold FROM users WHERE id = ?`

	var balance domain.Balance
	err := l.q.QueryRowContext(ctx, query, userID).Scan(
		&balance.UserID, &balance.Peta, &balance.Petagold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

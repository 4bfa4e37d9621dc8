package mysql

import (
	"context"
	"database/sql"

	"petaria-auction/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so the repositories can
// serve the read path directly and the write path inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxManager implements domain.UnitOfWork over database/sql. One Do call is
// one transaction: the callback gets repositories bound to that transaction,
// a nil return commits, anything else rolls back every write.
type TxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Do(ctx context.Context, fn func(ops domain.TxOps) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// Rollback is a no-op once the transaction committed; this guarantees
	// release on every exit path, including panics inside fn.
	defer tx.Rollback()

	if err := fn(&txOps{tx: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

type txOps struct {
	tx *sql.Tx
}

func (o *txOps) Auctions() domain.AuctionRepository {
	return NewAuctionRepository(o.tx)
}

func (o *txOps) Bids() domain.BidRepository {
	return NewBidRepository(o.tx)
}

func (o *txOps) Ledger() domain.CurrencyLedger {
	return NewCurrencyLedger(o.tx)
}

func (o *txOps) Inventory() domain.InventoryRepository {
	return NewInventoryRepository(o.tx)
}

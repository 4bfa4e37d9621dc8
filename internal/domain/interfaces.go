package domain

import (
	"context"
	"time"
)

// UnitOfWork runs fn inside one storage transaction. The repositories
// handed to fn are bound to that transaction; fn returning nil commits,
// anything else rolls every write back. Callers observe full success or
// no effect.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ops TxOps) error) error
}

type TxOps interface {
	Auctions() AuctionRepository
	Bids() BidRepository
	Ledger() CurrencyLedger
	Inventory() InventoryRepository
}

type AuctionRepository interface {
	Create(ctx context.Context, auction *Auction) error
	// GetForUpdate loads the auction row with an exclusive row lock, so
	// concurrent operations on the same auction serialize against it.
	GetForUpdate(ctx context.Context, auctionID string) (*Auction, error)
	SetCurrentBid(ctx context.Context, auctionID string, amount int64) error
	SetStatus(ctx context.Context, auctionID string, status AuctionStatus) error
}

type BidRepository interface {
	Append(ctx context.Context, bid *Bid) error
	// HighestActive returns the highest still-active bid on the auction,
	// ties broken by recency, or nil when there is none.
	HighestActive(ctx context.Context, auctionID string) (*Bid, error)
	// HighestActiveExcluding is HighestActive restricted to bids placed by
	// someone other than bidderID. It identifies the displaced stake when
	// a new bid lands: a bidder raising their own bid displaces no one.
	HighestActiveExcluding(ctx context.Context, auctionID, bidderID string) (*Bid, error)
	ListActive(ctx context.Context, auctionID string) ([]*Bid, error)
	SetStatus(ctx context.Context, bidID string, status BidStatus) error
}

// CurrencyLedger is the only mutation path for user balances. Both
// operations act on the primary currency (peta); auctions never touch
// petagold.
type CurrencyLedger interface {
	// Debit fails with ErrInsufficientFunds when the balance cannot cover
	// the amount. The check-and-subtract is a single atomic statement.
	Debit(ctx context.Context, userID string, amount int64) error
	Credit(ctx context.Context, userID string, amount int64) error
}

type InventoryRepository interface {
	OwnsUnit(ctx context.Context, userID, itemID string) (bool, error)
	// RemoveUnit takes one unit of the item out of the user's inventory,
	// failing with ErrItemNotOwned when no unit is held.
	RemoveUnit(ctx context.Context, userID, itemID string) error
	// AddUnit grants one unit, incrementing quantity when the user already
	// holds the item.
	AddUnit(ctx context.Context, userID, itemID string) error
}

// AuctionQueries is the read-only side: listing, detail, expiry scans.
// Implementations run against the database directly, outside any unit of
// work.
type AuctionQueries interface {
	List(ctx context.Context, q ListQuery) (*AuctionPage, error)
	Get(ctx context.Context, auctionID string) (*AuctionDetail, error)
	BySeller(ctx context.Context, sellerID string) ([]AuctionSummary, error)
	ExpiredActiveIDs(ctx context.Context, now time.Time, limit int) ([]string, error)
}

type BalanceQueries interface {
	GetBalance(ctx context.Context, userID string) (*Balance, error)
}

// Event interfaces
type EventPublisher interface {
	PublishAuctionEvent(ctx context.Context, event *AuctionEvent) error
}

type EventSubscriber interface {
	SubscribeToAuctionEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(event *AuctionEvent) error

// AuctionStateCache mirrors auction status for cheap read-path checks.
// It is advisory: business decisions always re-read the locked row.
type AuctionStateCache interface {
	SetAuctionStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	GetAuctionStatus(ctx context.Context, auctionID string) (AuctionStatus, bool, error)
}

// WebSocket interfaces
type WebSocketConnection interface {
	Send(message []byte) error
	Close() error
	UserID() string
	AuctionID() string
}

type ConnectionManager interface {
	RegisterConnection(userID, auctionID string, conn WebSocketConnection) error
	// UnregisterConnection removes conn from the registry only while it is
	// still the registered connection for that user and auction. A stale
	// teardown racing a reconnect must not evict the replacement.
	UnregisterConnection(userID, auctionID string, conn WebSocketConnection) error
	BroadcastToAuction(auctionID string, message interface{}) error
	CloseAndUnregisterConnections(auctionID string) error
}

// Leader election interface; gates the expiry sweeper to one instance.
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"petaria-auction/internal/domain"
)

// fakeWorld is an in-memory stand-in for the MySQL state the unit of work
// mutates. Do runs fn against a deep copy and swaps it in only on success,
// which mirrors the commit-or-rollback contract.
type fakeWorld struct {
	mu        sync.Mutex
	users     map[string]int64 // peta balances
	inventory map[string]int   // "userID/itemID" -> quantity
	auctions  map[string]*domain.Auction
	bids      []*domain.Bid
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		users:     make(map[string]int64),
		inventory: make(map[string]int),
		auctions:  make(map[string]*domain.Auction),
	}
}

func (w *fakeWorld) clone() *fakeWorld {
	c := newFakeWorld()
	for k, v := range w.users {
		c.users[k] = v
	}
	for k, v := range w.inventory {
		c.inventory[k] = v
	}
	for k, v := range w.auctions {
		a := *v
		c.auctions[k] = &a
	}
	for _, b := range w.bids {
		bc := *b
		c.bids = append(c.bids, &bc)
	}
	return c
}

func (w *fakeWorld) Do(ctx context.Context, fn func(ops domain.TxOps) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	tx := w.clone()
	if err := fn(&fakeTxOps{world: tx}); err != nil {
		return err
	}
	w.users = tx.users
	w.inventory = tx.inventory
	w.auctions = tx.auctions
	w.bids = tx.bids
	return nil
}

func (w *fakeWorld) itemKey(userID, itemID string) string {
	return userID + "/" + itemID
}

func (w *fakeWorld) quantity(userID, itemID string) int {
	return w.inventory[w.itemKey(userID, itemID)]
}

func (w *fakeWorld) bidByID(bidID string) *domain.Bid {
	for _, b := range w.bids {
		if b.ID == bidID {
			return b
		}
	}
	return nil
}

type fakeTxOps struct {
	world *fakeWorld
}

func (o *fakeTxOps) Auctions() domain.AuctionRepository    { return &fakeAuctionRepo{o.world} }
func (o *fakeTxOps) Bids() domain.BidRepository            { return &fakeBidRepo{o.world} }
func (o *fakeTxOps) Ledger() domain.CurrencyLedger         { return &fakeLedger{o.world} }
func (o *fakeTxOps) Inventory() domain.InventoryRepository { return &fakeInventoryRepo{o.world} }

type fakeAuctionRepo struct {
	world *fakeWorld
}

func (r *fakeAuctionRepo) Create(ctx context.Context, auction *domain.Auction) error {
	a := *auction
	r.world.auctions[a.ID] = &a
	return nil
}

func (r *fakeAuctionRepo) GetForUpdate(ctx context.Context, auctionID string) (*domain.Auction, error) {
	a, ok := r.world.auctions[auctionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAuctionRepo) SetCurrentBid(ctx context.Context, auctionID string, amount int64) error {
	a, ok := r.world.auctions[auctionID]
	if !ok {
		return domain.ErrNotFound
	}
	a.CurrentBid = amount
	a.UpdatedAt = time.Now()
	return nil
}

func (r *fakeAuctionRepo) SetStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	a, ok := r.world.auctions[auctionID]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

type fakeBidRepo struct {
	world *fakeWorld
}

func (r *fakeBidRepo) Append(ctx context.Context, bid *domain.Bid) error {
	b := *bid
	r.world.bids = append(r.world.bids, &b)
	return nil
}

func (r *fakeBidRepo) HighestActive(ctx context.Context, auctionID string) (*domain.Bid, error) {
	return r.highest(auctionID, "")
}

func (r *fakeBidRepo) HighestActiveExcluding(ctx context.Context, auctionID, bidderID string) (*domain.Bid, error) {
	return r.highest(auctionID, bidderID)
}

func (r *fakeBidRepo) highest(auctionID, excludeBidder string) (*domain.Bid, error) {
	var candidates []*domain.Bid
	for _, b := range r.world.bids {
		if b.AuctionID != auctionID || b.Status != domain.BidActive {
			continue
		}
		if excludeBidder != "" && b.BidderID == excludeBidder {
			continue
		}
		candidates = append(candidates, b)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Amount != candidates[j].Amount {
			return candidates[i].Amount > candidates[j].Amount
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	copied := *candidates[0]
	return &copied, nil
}

func (r *fakeBidRepo) ListActive(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	var out []*domain.Bid
	for _, b := range r.world.bids {
		if b.AuctionID == auctionID && b.Status == domain.BidActive {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBidRepo) SetStatus(ctx context.Context, bidID string, status domain.BidStatus) error {
	b := r.world.bidByID(bidID)
	if b == nil {
		return domain.ErrNotFound
	}
	b.Status = status
	return nil
}

type fakeLedger struct {
	world *fakeWorld
}

func (l *fakeLedger) Debit(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit amount must be positive", domain.ErrInvalidInput)
	}
	balance, ok := l.world.users[userID]
	if !ok || balance < amount {
		return domain.ErrInsufficientFunds
	}
	l.world.users[userID] = balance - amount
	return nil
}

func (l *fakeLedger) Credit(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", domain.ErrInvalidInput)
	}
	if _, ok := l.world.users[userID]; !ok {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}
	l.world.users[userID] += amount
	return nil
}

type fakeInventoryRepo struct {
	world *fakeWorld
}

func (r *fakeInventoryRepo) OwnsUnit(ctx context.Context, userID, itemID string) (bool, error) {
	return r.world.quantity(userID, itemID) >= 1, nil
}

func (r *fakeInventoryRepo) RemoveUnit(ctx context.Context, userID, itemID string) error {
	key := r.world.itemKey(userID, itemID)
	if r.world.inventory[key] < 1 {
		return domain.ErrItemNotOwned
	}
	r.world.inventory[key]--
	return nil
}

func (r *fakeInventoryRepo) AddUnit(ctx context.Context, userID, itemID string) error {
	r.world.inventory[r.world.itemKey(userID, itemID)]++
	return nil
}

// fakeEventPublisher records published events in order.
type fakeEventPublisher struct {
	mu     sync.Mutex
	events []*domain.AuctionEvent
}

func (p *fakeEventPublisher) PublishAuctionEvent(ctx context.Context, event *domain.AuctionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakeEventPublisher) published() []*domain.AuctionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*domain.AuctionEvent, len(p.events))
	copy(out, p.events)
	return out
}

type fakeStateCache struct {
	mu       sync.Mutex
	statuses map[string]domain.AuctionStatus
}

func newFakeStateCache() *fakeStateCache {
	return &fakeStateCache{statuses: make(map[string]domain.AuctionStatus)}
}

func (c *fakeStateCache) SetAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[auctionID] = status
	return nil
}

func (c *fakeStateCache) GetAuctionStatus(ctx context.Context, auctionID string) (domain.AuctionStatus, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.statuses[auctionID]
	return status, ok, nil
}

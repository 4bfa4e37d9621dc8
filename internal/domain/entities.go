package domain

import (
	"time"
)

type Auction struct {
	ID            string
	ItemID        string
	SellerID      string
	StartingPrice int64
	CurrentBid    int64
	BuyNowPrice   *int64
	MinIncrement  int64
	EndTime       time.Time
	Status        AuctionStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type AuctionStatus string

const (
	AuctionActive AuctionStatus = "active"
	AuctionEnded  AuctionStatus = "ended"
)

type Bid struct {
	ID        string
	AuctionID string
	BidderID  string
	Amount    int64
	Status    BidStatus
	CreatedAt time.Time
}

// BidStatus tracks what happened to the money behind a bid. Every accepted
// bid starts active (funds held by the auction). It moves to refunded when
// the bidder is displaced or the auction settles, or to won when the stake
// becomes the winning payment. A bid is refunded at most once.
type BidStatus string

const (
	BidActive   BidStatus = "active"
	BidRefunded BidStatus = "refunded"
	BidWon      BidStatus = "won"
)

// Balance holds a user's two currencies. Auctions transact exclusively in
// peta; petagold is read-only as far as this engine is concerned.
type Balance struct {
	UserID   string `json:"user_id"`
	Peta     int64  `json:"peta"`
	Petagold int64  `json:"petagold"`
}

type Principal struct {
	ID   string
	Role string
}

const RoleAdmin = "admin"

type CreateAuctionParams struct {
	ItemID        string
	StartingPrice int64
	BuyNowPrice   *int64
	MinIncrement  int64
	DurationHours float64
}

const (
	MinDurationHours = 0.5
	MaxDurationHours = 168
)

type ListQuery struct {
	Page     int
	Limit    int
	Search   string
	SortBy   string
	Order    string
	SellerID string
}

type AuctionSummary struct {
	ID            string    `json:"id"`
	ItemID        string    `json:"item_id"`
	ItemName      string    `json:"item_name"`
	SellerID      string    `json:"seller_id"`
	StartingPrice int64     `json:"starting_price"`
	CurrentBid    int64     `json:"current_bid"`
	BuyNowPrice   *int64    `json:"buy_now_price,omitempty"`
	MinIncrement  int64     `json:"min_increment"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type AuctionDetail struct {
	AuctionSummary
	Bids []BidRecord `json:"bids"`
}

type BidRecord struct {
	BidderID string    `json:"bidder_id"`
	Amount   int64     `json:"amount"`
	Status   string    `json:"status"`
	BidTime  time.Time `json:"bid_time"`
}

type AuctionPage struct {
	Items      []AuctionSummary `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

type AuctionEvent struct {
	Type      AuctionEventType `json:"type"`
	AuctionID string           `json:"auction_id"`
	UserID    string           `json:"user_id,omitempty"`
	Amount    int64            `json:"amount,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type AuctionEventType string

const (
	EventBidAccepted    AuctionEventType = "bid_accepted"
	EventAuctionSold    AuctionEventType = "auction_sold"
	EventAuctionSettled AuctionEventType = "auction_settled"
	EventAuctionExpired AuctionEventType = "auction_expired"
)

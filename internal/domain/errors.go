package domain

import "errors"

// Validation and lookup errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

// State-machine errors
var (
	ErrAuctionInactive = errors.New("auction is not active")
	ErrAuctionEnded    = errors.New("auction has ended")
	ErrNoBuyNow        = errors.New("auction has no buy-now price")
)

// Business-rule errors
var (
	ErrSellerCannotBid   = errors.New("seller cannot bid on own auction")
	ErrSellerCannotBuy   = errors.New("seller cannot buy own auction")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrItemNotOwned      = errors.New("item not owned")
)

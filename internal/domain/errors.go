package domain

import "errors"

// Lookup and validation errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidListing = errors.New("invalid listing")
	ErrNoBids         = errors.New("no bids for listing")
)

// Expected bid admission rejections. Callers may retry ErrPriceNotHighest
// with a higher price; the others are terminal for the attempted bid.
var (
	ErrAuctionClosed   = errors.New("auction closed")
	ErrSelfBid         = errors.New("seller cannot bid on own listing")
	ErrPriceTooLow     = errors.New("price does not exceed floor price")
	ErrPriceNotHighest = errors.New("price does not exceed current highest bid")
)

// Resolution and lifecycle errors.
var (
	ErrNotYetExpired  = errors.New("listing has not expired")
	ErrDeletionFailed = errors.New("user deletion failed")
)

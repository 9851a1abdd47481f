package domain

import (
	"context"
	"time"
)

// Repository interfaces
type ListingRepository interface {
	CreateListing(ctx context.Context, listing *Listing) error
	GetListing(ctx context.Context, listingID string) (*Listing, error)
	// CloseIfOpen flips Open true -> false and reports whether this call
	// performed the transition. Exactly one concurrent caller observes true.
	CloseIfOpen(ctx context.Context, listingID string, closedAt time.Time) (bool, error)
	// AdmitPrice raises HighestPrice to price iff the listing is still open
	// and price strictly exceeds the current HighestPrice. The store
	// arbitrates concurrent callers, including calls from other instances:
	// of two equal prices exactly one is admitted.
	AdmitPrice(ctx context.Context, listingID string, price int64) (bool, error)
	ListOpenBySeller(ctx context.Context, sellerID string) ([]*Listing, error)
	ListExpiredOpen(ctx context.Context, before time.Time) ([]*Listing, error)
	ListBySeller(ctx context.Context, sellerID string, page Page) ([]*Listing, error)
}

type BidRepository interface {
	InsertBid(ctx context.Context, bid *Bid) error
	// HighestByListing returns the bid with the maximum price, breaking
	// ties by earliest creation time. ErrNoBids if none exist.
	HighestByListing(ctx context.Context, listingID string) (*Bid, error)
	ListByListing(ctx context.Context, listingID string) ([]*Bid, error)
	ListByBidder(ctx context.Context, bidderID string, page Page) ([]*Bid, error)
	DeleteByBidder(ctx context.Context, bidderID string) (int64, error)
	DeleteByListing(ctx context.Context, listingID string) (int64, error)
}

type ChatSessionRepository interface {
	// CreateIfAbsent persists the session unless one already exists for its
	// listing, reporting whether a row was created.
	CreateIfAbsent(ctx context.Context, session *ChatSession) (bool, error)
	GetByListing(ctx context.Context, listingID string) (*ChatSession, error)
	ListByParticipant(ctx context.Context, userID string, page Page) ([]*ChatSession, error)
}

type FavoriteRepository interface {
	GetByUserAndListing(ctx context.Context, userID, listingID string) (*Favorite, error)
	// SaveFavorite upserts on the (user, listing) pair.
	SaveFavorite(ctx context.Context, favorite *Favorite) error
	ListActiveByUser(ctx context.Context, userID string, page Page) ([]*Favorite, error)
	CountActiveByListing(ctx context.Context, listingID string) (int, error)
	DeactivateByListing(ctx context.Context, listingID string) error
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*Account, error)
	UpdateProfile(ctx context.Context, accountID, username, profileImage string) error
	// Anonymize clears the display name, image and provider identity while
	// keeping the row. Safe to repeat.
	Anonymize(ctx context.Context, accountID string) error
}

// Cache interfaces
type ListingStateCache interface {
	SetListingOpen(ctx context.Context, listingID string, open bool) error
	// GetListingOpen reports (open, known). Unknown listings fall through to
	// the repository.
	GetListingOpen(ctx context.Context, listingID string) (bool, bool, error)
}

// Event interfaces
type EventPublisher interface {
	PublishAuctionEvent(ctx context.Context, event *AuctionEvent) error
}

type EventHandler func(event *AuctionEvent) error

type EventSubscriber interface {
	SubscribeToAuctionEvents(ctx context.Context, handler EventHandler) error
}

// Leader election interface
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// Notification interface
type UserNotifier interface {
	NotifyUser(ctx context.Context, userID string, message interface{}) error
}

package domain

import (
	"time"
)

// Listing creation constraints, mirrored by CatalogService validation.
const (
	MinFloorPrice     = 1000
	MaxListingImages  = 5
	MaxTitleLength    = 16
	MaxDescriptionLen = 500
)

// AnonymizedName replaces the display name of a deleted account.
const AnonymizedName = "Unknown"

type Category int

const (
	CategoryDigitalDevice Category = iota
	CategoryHouseholdAppliance
	CategoryFurniture
	CategoryChildrenBook
	CategorySportsLeisure
	CategoryPlant
	CategoryHobby
	CategoryEtc
)

func (c Category) String() string {
	switch c {
	case CategoryDigitalDevice:
		return "digital_device"
	case CategoryHouseholdAppliance:
		return "household_appliance"
	case CategoryFurniture:
		return "furniture"
	case CategoryChildrenBook:
		return "children_book"
	case CategorySportsLeisure:
		return "sports_leisure"
	case CategoryPlant:
		return "plant"
	case CategoryHobby:
		return "hobby"
	case CategoryEtc:
		return "etc"
	default:
		return "unknown"
	}
}

// ParseCategory maps the wire name back to a Category. The enumeration is
// closed: unknown names are an error.
func ParseCategory(s string) (Category, bool) {
	for c := CategoryDigitalDevice; c <= CategoryEtc; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// Listing is an item under auction. FloorPrice is fixed at creation and Open
// transitions true -> false exactly once; a closed listing is never reopened.
// HighestPrice starts at the floor price and is only ever raised, through
// ListingRepository.AdmitPrice.
type Listing struct {
	ID           string
	Title        string
	Description  string
	Category     Category
	Images       []string
	FloorPrice   int64
	HighestPrice int64
	Location     string
	SellerID     string
	Open         bool
	ExpireAt     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Biddable reports whether the listing still accepts bids at the given time.
func (l *Listing) Biddable(now time.Time) bool {
	return l.Open && now.Before(l.ExpireAt)
}

// Bid is an admitted claim on a listing. For any listing, admitted bids
// ordered by creation time carry strictly increasing prices, all above the
// listing's floor price.
type Bid struct {
	ID        string
	ListingID string
	BidderID  string
	Price     int64
	CreatedAt time.Time
}

// ChatSession links a seller with the winning bidder of a resolved listing.
// At most one exists per listing.
type ChatSession struct {
	ID        string
	ListingID string
	SellerID  string
	WinnerID  string
	CreatedAt time.Time
}

// Favorite marks a user's interest in a listing. One record per
// (user, listing) pair, created lazily on first toggle.
type Favorite struct {
	ID        string
	UserID    string
	ListingID string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Account is a marketplace user. Deleted accounts are anonymized rather than
// erased so bid history and chat sessions stay referentially valid.
type Account struct {
	ID           string
	Username     string
	ProfileImage string
	Provider     string
	ProviderID   string
	GroupID      string
	Anonymized   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OutcomeStatus string

const (
	OutcomeWon       OutcomeStatus = "won"
	OutcomeUnsold    OutcomeStatus = "unsold"
	OutcomeCancelled OutcomeStatus = "cancelled"
)

// ResolutionOutcome is the result of closing a listing. Repeated resolution
// of the same listing yields the same outcome.
type ResolutionOutcome struct {
	ListingID  string
	Status     OutcomeStatus
	WinnerID   string
	Price      int64
	ResolvedAt time.Time
}

type AuctionEventType string

const (
	EventBidAccepted      AuctionEventType = "bid_accepted"
	EventListingWon       AuctionEventType = "listing_won"
	EventListingUnsold    AuctionEventType = "listing_unsold"
	EventListingCancelled AuctionEventType = "listing_cancelled"
)

// AuctionEvent is published to the notification/chat collaborator. For
// EventListingWon, SellerID and UserID identify the chat participants.
type AuctionEvent struct {
	Type      AuctionEventType `json:"type"`
	ListingID string           `json:"listing_id"`
	SellerID  string           `json:"seller_id,omitempty"`
	UserID    string           `json:"user_id,omitempty"`
	Price     int64            `json:"price,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Page bounds the repository list queries consumed by the read endpoints.
type Page struct {
	Offset int
	Limit  int
}

package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"bidmarket/internal/domain"
)

type MySQLBidRepository struct {
	db *sql.DB
}

func NewMySQLBidRepository(db *sql.DB) *MySQLBidRepository {
	return &MySQLBidRepository{db: db}
}

// InsertBid records the bid only while its listing is open. The open check
// and the insert are one statement, so a cancellation on another instance
// that closed the listing in between is observed here instead of leaving a
// bid behind on a closed listing.
func (r *MySQLBidRepository) InsertBid(ctx context.Context, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, listing_id, bidder_id, price, created_at)
        SELECT ?, id, ?, ?, ? FROM listings WHERE id = ? AND open = TRUE
    `
	result, err := r.db.ExecContext(ctx, query,
		bid.ID, bid.BidderID, bid.Price, bid.CreatedAt, bid.ListingID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("insert bid for listing %s: %w", bid.ListingID, domain.ErrAuctionClosed)
	}
	return nil
}

func (r *MySQLBidRepository) HighestByListing(ctx context.Context, listingID string) (*domain.Bid, error) {
	// Ties cannot occur under the admission rule; created_at breaks them
	// anyway in favor of the earlier bid.
	query := `
        SELECT id, listing_id, bidder_id, price, created_at
        FROM bids WHERE listing_id = ?
        ORDER BY price DESC, created_at ASC LIMIT 1
    `

	var bid domain.Bid
	err := r.db.QueryRowContext(ctx, query, listingID).Scan(
		&bid.ID, &bid.ListingID, &bid.BidderID, &bid.Price, &bid.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("highest bid for listing %s: %w", listingID, domain.ErrNoBids)
		}
		return nil, err
	}
	return &bid, nil
}

func (r *MySQLBidRepository) ListByListing(ctx context.Context, listingID string) ([]*domain.Bid, error) {
	query := `
        SELECT id, listing_id, bidder_id, price, created_at
        FROM bids WHERE listing_id = ? ORDER BY created_at ASC
    `
	return r.queryBids(ctx, query, listingID)
}

func (r *MySQLBidRepository) ListByBidder(ctx context.Context, bidderID string, page domain.Page) ([]*domain.Bid, error) {
	query := `
        SELECT id, listing_id, bidder_id, price, created_at
        FROM bids WHERE bidder_id = ?
        ORDER BY created_at DESC LIMIT ? OFFSET ?
    `
	return r.queryBids(ctx, query, bidderID, page.Limit, page.Offset)
}

func (r *MySQLBidRepository) DeleteByBidder(ctx context.Context, bidderID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bids WHERE bidder_id = ?`, bidderID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *MySQLBidRepository) DeleteByListing(ctx context.Context, listingID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bids WHERE listing_id = ?`, listingID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *MySQLBidRepository) queryBids(ctx context.Context, query string, args ...interface{}) ([]*domain.Bid, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		var bid domain.Bid
		err := rows.Scan(&bid.ID, &bid.ListingID, &bid.BidderID, &bid.Price, &bid.CreatedAt)
		if err != nil {
			return nil, err
		}
		bids = append(bids, &bid)
	}
	return bids, rows.Err()
}

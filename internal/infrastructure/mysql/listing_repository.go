package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"bidmarket/internal/domain"
)

type MySQLListingRepository struct {
	db *sql.DB
}

func NewMySQLListingRepository(db *sql.DB) *MySQLListingRepository {
	return &MySQLListingRepository{db: db}
}

const listingColumns = `id, title, description, category, images, floor_price, highest_price, location, seller_id, open, expire_at, created_at, updated_at`

func (r *MySQLListingRepository) CreateListing(ctx context.Context, listing *domain.Listing) error {
	images, err := encodeImages(listing.Images)
	if err != nil {
		return fmt.Errorf("create listing %s: %w", listing.ID, err)
	}

	query := `
        INSERT INTO listings (` + listingColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = r.db.ExecContext(ctx, query,
		listing.ID, listing.Title, listing.Description, int(listing.Category),
		images, listing.FloorPrice, listing.HighestPrice, listing.Location,
		listing.SellerID, listing.Open, listing.ExpireAt,
		listing.CreatedAt, listing.UpdatedAt)
	return err
}

func (r *MySQLListingRepository) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = ?`

	listing, err := scanListing(r.db.QueryRowContext(ctx, query, listingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get listing %s: %w", listingID, domain.ErrNotFound)
		}
		return nil, err
	}
	return listing, nil
}

// CloseIfOpen is the conditional open -> closed transition. The WHERE clause
// makes MySQL arbitrate concurrent callers: exactly one update hits a row.
func (r *MySQLListingRepository) CloseIfOpen(ctx context.Context, listingID string, closedAt time.Time) (bool, error) {
	query := `UPDATE listings SET open = FALSE, updated_at = ? WHERE id = ? AND open = TRUE`

	result, err := r.db.ExecContext(ctx, query, closedAt, listingID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		// Distinguish "already closed" from "absent".
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM listings WHERE id = ?)`, listingID).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, fmt.Errorf("close listing %s: %w", listingID, domain.ErrNotFound)
		}
		return false, nil
	}
	return true, nil
}

// AdmitPrice is the conditional raise of the highest admitted price. The
// WHERE clause makes MySQL arbitrate, so admission stays linearizable per
// listing across API instances sharing the database.
func (r *MySQLListingRepository) AdmitPrice(ctx context.Context, listingID string, price int64) (bool, error) {
	query := `UPDATE listings SET highest_price = ? WHERE id = ? AND open = TRUE AND highest_price < ?`

	result, err := r.db.ExecContext(ctx, query, price, listingID, price)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM listings WHERE id = ?)`, listingID).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, fmt.Errorf("admit price on listing %s: %w", listingID, domain.ErrNotFound)
		}
		return false, nil
	}
	return true, nil
}

func (r *MySQLListingRepository) ListOpenBySeller(ctx context.Context, sellerID string) ([]*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE seller_id = ? AND open = TRUE`
	return r.queryListings(ctx, query, sellerID)
}

func (r *MySQLListingRepository) ListExpiredOpen(ctx context.Context, before time.Time) ([]*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE open = TRUE AND expire_at <= ?`
	return r.queryListings(ctx, query, before)
}

func (r *MySQLListingRepository) ListBySeller(ctx context.Context, sellerID string, page domain.Page) ([]*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE seller_id = ?
        ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.queryListings(ctx, query, sellerID, page.Limit, page.Offset)
}

func (r *MySQLListingRepository) queryListings(ctx context.Context, query string, args ...interface{}) ([]*domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var listing domain.Listing
	var category int
	var images string
	var location sql.NullString

	err := row.Scan(&listing.ID, &listing.Title, &listing.Description, &category,
		&images, &listing.FloorPrice, &listing.HighestPrice, &location,
		&listing.SellerID, &listing.Open, &listing.ExpireAt,
		&listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		return nil, err
	}

	listing.Category = domain.Category(category)
	listing.Location = location.String
	listing.Images, err = decodeImages(images)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", listing.ID, err)
	}
	return &listing, nil
}

// Image references are stored as a JSON array so references may contain any
// character.
func encodeImages(images []string) (string, error) {
	if len(images) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return string(encoded), nil
}

func decodeImages(encoded string) ([]string, error) {
	if encoded == "" || encoded == "[]" {
		return nil, nil
	}
	var images []string
	if err := json.Unmarshal([]byte(encoded), &images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return images, nil
}

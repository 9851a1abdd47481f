package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"bidmarket/internal/domain"
)

type MySQLFavoriteRepository struct {
	db *sql.DB
}

func NewMySQLFavoriteRepository(db *sql.DB) *MySQLFavoriteRepository {
	return &MySQLFavoriteRepository{db: db}
}

func (r *MySQLFavoriteRepository) GetByUserAndListing(ctx context.Context, userID, listingID string) (*domain.Favorite, error) {
	query := `
        SELECT id, user_id, listing_id, active, created_at, updated_at
        FROM favorites WHERE user_id = ? AND listing_id = ?
    `

	var favorite domain.Favorite
	err := r.db.QueryRowContext(ctx, query, userID, listingID).Scan(
		&favorite.ID, &favorite.UserID, &favorite.ListingID, &favorite.Active,
		&favorite.CreatedAt, &favorite.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("favorite for user %s listing %s: %w", userID, listingID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &favorite, nil
}

// SaveFavorite upserts on the (user_id, listing_id) unique key.
func (r *MySQLFavoriteRepository) SaveFavorite(ctx context.Context, favorite *domain.Favorite) error {
	query := `
        INSERT INTO favorites (id, user_id, listing_id, active, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE active = VALUES(active), updated_at = VALUES(updated_at)
    `
	_, err := r.db.ExecContext(ctx, query,
		favorite.ID, favorite.UserID, favorite.ListingID, favorite.Active,
		favorite.CreatedAt, favorite.UpdatedAt)
	return err
}

func (r *MySQLFavoriteRepository) ListActiveByUser(ctx context.Context, userID string, page domain.Page) ([]*domain.Favorite, error) {
	query := `
        SELECT id, user_id, listing_id, active, created_at, updated_at
        FROM favorites WHERE user_id = ? AND active = TRUE
        ORDER BY updated_at DESC LIMIT ? OFFSET ?
    `

	rows, err := r.db.QueryContext(ctx, query, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []*domain.Favorite
	for rows.Next() {
		var favorite domain.Favorite
		err := rows.Scan(&favorite.ID, &favorite.UserID, &favorite.ListingID,
			&favorite.Active, &favorite.CreatedAt, &favorite.UpdatedAt)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, &favorite)
	}
	return favorites, rows.Err()
}

func (r *MySQLFavoriteRepository) CountActiveByListing(ctx context.Context, listingID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE listing_id = ? AND active = TRUE`, listingID).Scan(&count)
	return count, err
}

func (r *MySQLFavoriteRepository) DeactivateByListing(ctx context.Context, listingID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE favorites SET active = FALSE WHERE listing_id = ? AND active = TRUE`, listingID)
	return err
}

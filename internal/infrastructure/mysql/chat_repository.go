package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"bidmarket/internal/domain"
)

type MySQLChatSessionRepository struct {
	db *sql.DB
}

func NewMySQLChatSessionRepository(db *sql.DB) *MySQLChatSessionRepository {
	return &MySQLChatSessionRepository{db: db}
}

const mysqlErrDuplicateEntry = 1062

// CreateIfAbsent relies on the UNIQUE KEY on listing_id: the second of two
// concurrent inserts fails with a duplicate-entry error and reports false.
func (r *MySQLChatSessionRepository) CreateIfAbsent(ctx context.Context, session *domain.ChatSession) (bool, error) {
	query := `
        INSERT INTO chat_sessions (id, listing_id, seller_id, winner_id, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.ListingID, session.SellerID, session.WinnerID, session.CreatedAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *MySQLChatSessionRepository) GetByListing(ctx context.Context, listingID string) (*domain.ChatSession, error) {
	query := `
        SELECT id, listing_id, seller_id, winner_id, created_at
        FROM chat_sessions WHERE listing_id = ?
    `

	var session domain.ChatSession
	err := r.db.QueryRowContext(ctx, query, listingID).Scan(
		&session.ID, &session.ListingID, &session.SellerID, &session.WinnerID, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("chat session for listing %s: %w", listingID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &session, nil
}

func (r *MySQLChatSessionRepository) ListByParticipant(ctx context.Context, userID string, page domain.Page) ([]*domain.ChatSession, error) {
	query := `
        SELECT id, listing_id, seller_id, winner_id, created_at
        FROM chat_sessions WHERE seller_id = ? OR winner_id = ?
        ORDER BY created_at DESC LIMIT ? OFFSET ?
    `

	rows, err := r.db.QueryContext(ctx, query, userID, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.ChatSession
	for rows.Next() {
		var session domain.ChatSession
		err := rows.Scan(&session.ID, &session.ListingID, &session.SellerID,
			&session.WinnerID, &session.CreatedAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

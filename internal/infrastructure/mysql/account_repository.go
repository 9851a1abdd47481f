package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"bidmarket/internal/domain"
)

type MySQLAccountRepository struct {
	db *sql.DB
}

func NewMySQLAccountRepository(db *sql.DB) *MySQLAccountRepository {
	return &MySQLAccountRepository{db: db}
}

const accountColumns = `id, username, profile_image, provider, provider_id, group_id, anonymized, created_at, updated_at`

func (r *MySQLAccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
        INSERT INTO accounts (` + accountColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Username, account.ProfileImage, account.Provider,
		account.ProviderID, account.GroupID, account.Anonymized,
		account.CreatedAt, account.UpdatedAt)
	return err
}

func (r *MySQLAccountRepository) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, accountID),
		fmt.Sprintf("get account %s", accountID))
}

func (r *MySQLAccountRepository) GetByProvider(ctx context.Context, provider, providerID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE provider = ? AND provider_id = ?`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, provider, providerID),
		fmt.Sprintf("account for provider %s/%s", provider, providerID))
}

func (r *MySQLAccountRepository) UpdateProfile(ctx context.Context, accountID, username, profileImage string) error {
	query := `UPDATE accounts SET username = ?, profile_image = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, username, profileImage, time.Now(), accountID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("update account %s: %w", accountID, domain.ErrNotFound)
	}
	return nil
}

func (r *MySQLAccountRepository) Anonymize(ctx context.Context, accountID string) error {
	query := `
        UPDATE accounts
        SET username = ?, profile_image = '', provider = '', provider_id = '',
            anonymized = TRUE, updated_at = ?
        WHERE id = ?
    `

	result, err := r.db.ExecContext(ctx, query, domain.AnonymizedName, time.Now(), accountID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("anonymize account %s: %w", accountID, domain.ErrNotFound)
	}
	return nil
}

func (r *MySQLAccountRepository) scanAccount(row *sql.Row, op string) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(&account.ID, &account.Username, &account.ProfileImage,
		&account.Provider, &account.ProviderID, &account.GroupID,
		&account.Anonymized, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return nil, err
	}
	return &account, nil
}

package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bidmarket/internal/domain"
)

// AccountStore is a concurrency-safe in-memory domain.AccountRepository.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]*domain.Account)}
}

func (s *AccountStore) CreateAccount(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

func (s *AccountStore) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("get account %s: %w", accountID, domain.ErrNotFound)
	}
	cp := *account
	return &cp, nil
}

func (s *AccountStore) GetByProvider(ctx context.Context, provider, providerID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if account.Provider == provider && account.ProviderID == providerID {
			cp := *account
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("account for provider %s/%s: %w", provider, providerID, domain.ErrNotFound)
}

func (s *AccountStore) UpdateProfile(ctx context.Context, accountID, username, profileImage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("update account %s: %w", accountID, domain.ErrNotFound)
	}
	account.Username = username
	account.ProfileImage = profileImage
	account.UpdatedAt = time.Now()
	return nil
}

func (s *AccountStore) Anonymize(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("anonymize account %s: %w", accountID, domain.ErrNotFound)
	}
	account.Username = domain.AnonymizedName
	account.ProfileImage = ""
	account.Provider = ""
	account.ProviderID = ""
	account.Anonymized = true
	account.UpdatedAt = time.Now()
	return nil
}

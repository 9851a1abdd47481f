package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bidmarket/internal/domain"
	"bidmarket/pkg/logger"
	"bidmarket/pkg/utils"
)

const defaultGroupID = "user_group"

// AccountService manages accounts and coordinates the cascading cleanup that
// account deletion triggers across bids and listings.
type AccountService struct {
	accounts domain.AccountRepository
	listings domain.ListingRepository
	bids     *BidService
	resolver *ResolverService
	log      logger.Logger
}

func NewAccountService(
	accounts domain.AccountRepository,
	listings domain.ListingRepository,
	bids *BidService,
	resolver *ResolverService,
	log logger.Logger,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		listings: listings,
		bids:     bids,
		resolver: resolver,
		log:      log,
	}
}

// Join returns the account bound to the provider identity pair, creating it
// on first sight. Credential validation happens upstream; the pair arrives
// here already authenticated.
func (s *AccountService) Join(ctx context.Context, provider, providerID, username, profileImage string) (*domain.Account, error) {
	if provider == "" || providerID == "" {
		return nil, fmt.Errorf("join: provider identity must be provided: %w", domain.ErrNotFound)
	}

	account, err := s.accounts.GetByProvider(ctx, provider, providerID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	account = &domain.Account{
		ID:           utils.GenerateID("account"),
		Username:     username,
		ProfileImage: profileImage,
		Provider:     provider,
		ProviderID:   providerID,
		GroupID:      defaultGroupID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("join account: %w", err)
	}

	s.log.Info("Account joined", "account_id", account.ID, "provider", provider)
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accounts.GetAccount(ctx, accountID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, accountID, username, profileImage string) error {
	return s.accounts.UpdateProfile(ctx, accountID, username, profileImage)
}

// DeleteUser runs the deletion cascade as one unit: purge the user's bids as
// a bidder, cancel every still-open listing they sell, then anonymize the
// account. The account row persists so historical bids and chat sessions
// keep valid references. Every step is idempotent, so a failed cascade can
// be retried; any failure surfaces as ErrDeletionFailed and no partial state
// is reported as success.
func (s *AccountService) DeleteUser(ctx context.Context, userID string) error {
	account, err := s.accounts.GetAccount(ctx, userID)
	if err != nil {
		return err
	}
	if account.Anonymized {
		// Cascade already completed.
		return nil
	}

	if err := s.cascade(ctx, userID); err != nil {
		return fmt.Errorf("delete user %s: %w: %w", userID, domain.ErrDeletionFailed, err)
	}

	s.log.Info("User deleted", "account_id", userID)
	return nil
}

func (s *AccountService) cascade(ctx context.Context, userID string) error {
	if _, err := s.bids.BulkDeleteByBidder(ctx, userID); err != nil {
		return err
	}

	open, err := s.listings.ListOpenBySeller(ctx, userID)
	if err != nil {
		return fmt.Errorf("list open listings of seller %s: %w", userID, err)
	}
	for _, listing := range open {
		if err := s.resolver.Cancel(ctx, listing.ID, time.Now()); err != nil {
			return err
		}
	}

	if err := s.accounts.Anonymize(ctx, userID); err != nil {
		return err
	}
	return nil
}

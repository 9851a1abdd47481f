package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bidmarket/internal/domain"
)

// FavoriteStore is a concurrency-safe in-memory domain.FavoriteRepository.
type FavoriteStore struct {
	mu        sync.RWMutex
	favorites map[string]domain.Favorite // key: userID + "/" + listingID
}

func NewFavoriteStore() *FavoriteStore {
	return &FavoriteStore{favorites: make(map[string]domain.Favorite)}
}

func favoriteKey(userID, listingID string) string {
	return userID + "/" + listingID
}

func (s *FavoriteStore) GetByUserAndListing(ctx context.Context, userID, listingID string) (*domain.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	favorite, ok := s.favorites[favoriteKey(userID, listingID)]
	if !ok {
		return nil, fmt.Errorf("favorite for user %s listing %s: %w", userID, listingID, domain.ErrNotFound)
	}
	cp := favorite
	return &cp, nil
}

func (s *FavoriteStore) SaveFavorite(ctx context.Context, favorite *domain.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites[favoriteKey(favorite.UserID, favorite.ListingID)] = *favorite
	return nil
}

func (s *FavoriteStore) ListActiveByUser(ctx context.Context, userID string, page domain.Page) ([]*domain.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Favorite
	for _, f := range s.favorites {
		if f.UserID == userID && f.Active {
			cp := f
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return paginate(result, page), nil
}

func (s *FavoriteStore) CountActiveByListing(ctx context.Context, listingID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, f := range s.favorites {
		if f.ListingID == listingID && f.Active {
			count++
		}
	}
	return count, nil
}

func (s *FavoriteStore) DeactivateByListing(ctx context.Context, listingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, f := range s.favorites {
		if f.ListingID == listingID && f.Active {
			f.Active = false
			s.favorites[key] = f
		}
	}
	return nil
}

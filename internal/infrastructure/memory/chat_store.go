package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bidmarket/internal/domain"
)

// ChatStore is a concurrency-safe in-memory domain.ChatSessionRepository.
// Uniqueness per listing is enforced under the store lock, which makes
// CreateIfAbsent linearizable the same way the unique key does in MySQL.
type ChatStore struct {
	mu        sync.RWMutex
	byListing map[string]domain.ChatSession // key: listingID
}

func NewChatStore() *ChatStore {
	return &ChatStore{byListing: make(map[string]domain.ChatSession)}
}

func (s *ChatStore) CreateIfAbsent(ctx context.Context, session *domain.ChatSession) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byListing[session.ListingID]; exists {
		return false, nil
	}
	s.byListing[session.ListingID] = *session
	return true, nil
}

func (s *ChatStore) GetByListing(ctx context.Context, listingID string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.byListing[listingID]
	if !ok {
		return nil, fmt.Errorf("chat session for listing %s: %w", listingID, domain.ErrNotFound)
	}
	cp := session
	return &cp, nil
}

func (s *ChatStore) ListByParticipant(ctx context.Context, userID string, page domain.Page) ([]*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ChatSession
	for _, session := range s.byListing {
		if session.SellerID == userID || session.WinnerID == userID {
			cp := session
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, page), nil
}

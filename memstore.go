package uauth

import (
	"context"
	"sync"
	"time"
)

// MemStore is an in-memory Store implementation. It backs tests and small
// single-process deployments; production setups should use stores/gorm.
type MemStore struct {
	mu            sync.RWMutex
	usersByID     map[string]*User
	usersByEmail  map[string]*User
	refreshTokens map[string]*RefreshToken
}

func NewMemStore() *MemStore {
	return &MemStore{
		usersByID:     make(map[string]*User),
		usersByEmail:  make(map[string]*User),
		refreshTokens: make(map[string]*RefreshToken),
	}
}

func (s *MemStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *MemStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *MemStore) CreateUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	u := *user
	u.CreatedAt = now
	u.UpdatedAt = now
	s.usersByID[u.ID] = &u
	s.usersByEmail[u.Email] = &u
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (s *MemStore) SaveUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.usersByID[user.ID]
	if !ok {
		return ErrNotFound
	}
	u := *user
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now()
	s.usersByID[u.ID] = &u
	s.usersByEmail[u.Email] = &u
	user.UpdatedAt = u.UpdatedAt
	return nil
}

func (s *MemStore) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.refreshTokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	t := *rt
	return &t, nil
}

func (s *MemStore) CreateRefreshToken(ctx context.Context, token *RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *token
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.refreshTokens[t.Token] = &t
	token.CreatedAt = t.CreatedAt
	return nil
}

func (s *MemStore) DeleteRefreshToken(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refreshTokens[token]; !ok {
		return false, nil
	}
	delete(s.refreshTokens, token)
	return true, nil
}

func (s *MemStore) DeleteUserRefreshTokens(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for token, rt := range s.refreshTokens {
		if rt.UserID == userID {
			delete(s.refreshTokens, token)
			count++
		}
	}
	return count, nil
}

package memory

import (
	"context"
	"math"
	"sync"

	"example.com/userstore/internal/domain"
	"example.com/userstore/internal/storage"
)

// Store keeps users in insertion order. All access goes through mu, so
// concurrent handlers never lose updates.
type Store struct {
	mu     sync.RWMutex
	users  []domain.User
	lastID int64
}

func New() *Store {
	return &Store{users: make([]domain.User, 0, 16)}
}

// Seed appends users as given. Ids are not checked for uniqueness; lookups
// return the first match. The id counter moves past the largest seeded id.
func (s *Store) Seed(_ context.Context, users []domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users = append(s.users, u.Clone())
		if u.ID > s.lastID {
			s.lastID = u.ID
		}
	}
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.User{}, storage.ErrNotFound
	}
	return s.users[i].Clone(), nil
}

func (s *Store) CreateUser(_ context.Context, name *string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastID == math.MaxInt64 {
		return domain.User{}, storage.ErrNoIDs
	}
	s.lastID++
	u := domain.User{ID: s.lastID, Name: name}
	u = u.Clone()
	s.users = append(s.users, u)
	return u.Clone(), nil
}

func (s *Store) UpdateUser(_ context.Context, id int64, name *string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.User{}, storage.ErrNotFound
	}
	s.users[i].Name = domain.User{Name: name}.Clone().Name
	return s.users[i].Clone(), nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return storage.ErrNotFound
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	return nil
}

func (s *Store) Close() error {
	return nil
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id int64) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

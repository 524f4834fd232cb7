package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"example.com/userstore/internal/domain"
	"example.com/userstore/internal/repository"
	"example.com/userstore/internal/storage"
)

var ErrNameRequired = errors.New("user name is required")

type UserService struct {
	repo        repository.UserRepository
	logger      *slog.Logger
	requireName bool
}

type Option func(*UserService)

// WithRequireName rejects create and update requests without a name.
func WithRequireName(v bool) Option {
	return func(s *UserService) { s.requireName = v }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *UserService) { s.logger = l }
}

func NewUserService(repo repository.UserRepository, opts ...Option) *UserService {
	s := &UserService{
		repo:   repo,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, rawID string) (domain.User, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return domain.User{}, err
	}
	return s.repo.GetUser(ctx, id)
}

func (s *UserService) Create(ctx context.Context, name *string) (domain.User, error) {
	if err := s.checkName(name); err != nil {
		return domain.User{}, err
	}
	u, err := s.repo.CreateUser(ctx, name)
	if err != nil {
		return domain.User{}, err
	}
	s.logger.DebugContext(ctx, "user created", "id", u.ID)
	return u, nil
}

func (s *UserService) Update(ctx context.Context, rawID string, name *string) (domain.User, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.checkName(name); err != nil {
		return domain.User{}, err
	}
	u, err := s.repo.UpdateUser(ctx, id, name)
	if err != nil {
		return domain.User{}, err
	}
	s.logger.DebugContext(ctx, "user updated", "id", u.ID)
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "user deleted", "id", id)
	return nil
}

func (s *UserService) checkName(name *string) error {
	if s.requireName && (name == nil || *name == "") {
		return ErrNameRequired
	}
	return nil
}

// ParseID parses a path id. Anything that is not a base-10 integer can never
// match a stored record, so it is reported as storage.ErrNotFound.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id %q: %w", raw, storage.ErrNotFound)
	}
	return id, nil
}

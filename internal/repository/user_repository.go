package repository

import (
	"context"

	"example.com/userstore/internal/domain"
)

// UserRepository owns the user collection. Lookups match the first record with
// the given id and return storage.ErrNotFound when none does.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	CreateUser(ctx context.Context, name *string) (domain.User, error)
	UpdateUser(ctx context.Context, id int64, name *string) (domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Seeder loads the initial collection at startup.
type Seeder interface {
	Seed(ctx context.Context, users []domain.User) error
}

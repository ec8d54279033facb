package repository

import (
	"context"

	"github.com/sessionforge/sessionforge/internal/domain"
)

type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
}

type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no row matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// Create returns domain.ErrUserAlreadyExists on a duplicate email.
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

package service

import (
	"context"
	"log/slog"

	"github.com/msomdec/book-catalog/internal/domain"
	"github.com/msomdec/book-catalog/internal/validator"
)

// UserService provides read-only user lookups. Accounts are created by the
// identity provider, not here.
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, rawID any) (*domain.User, error) {
	id, err := validator.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if !validator.ValidateEmail(email) {
		slog.Warn("invalid email parameter")
		return nil, domain.ErrInvalidInput
	}
	return s.users.GetByEmail(ctx, email)
}

package ports

import (
	"context"

	"github.com/retailhub/backoffice/internal/core/domain"
)

// UserRepository defines persistence operations for credential records.
// Implementations return domain.ErrDuplicateIdentity on an email collision and
// domain.ErrUserNotFound when no record matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

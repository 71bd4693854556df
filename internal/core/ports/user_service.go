package ports

import (
	"context"

	"github.com/retailhub/backoffice/internal/core/domain"
)

// UpdateUserInput holds a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Name    *string
	Email   *string
	Role    *string
	ActorID string
}

// UserService implements administrative user management.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, in CreateAccountInput) (*domain.User, error)
	Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id, actorID string) error
}

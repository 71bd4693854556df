package ports

import (
	"context"

	"github.com/retailhub/backoffice/internal/core/domain"
)

// RegisterInput carries a self-service registration. It has no role field:
// public registrations always receive the least-privileged role.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// CreateAccountInput carries an account created by an administrator.
type CreateAccountInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	ActorID  string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token    string
	Identity domain.Identity
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	CreatePrivilegedAccount(ctx context.Context, in CreateAccountInput) (*domain.User, error)
	CreateManager(ctx context.Context, in CreateAccountInput) (*domain.User, error)
}

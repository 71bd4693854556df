package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/retailhub/backoffice/internal/core/domain"
	"github.com/retailhub/backoffice/internal/core/ports"
)

// AccountCreator creates accounts with an explicit role.
type AccountCreator interface {
	CreatePrivilegedAccount(ctx context.Context, in ports.CreateAccountInput) (*domain.User, error)
}

// UserService implements the administrative user management operations.
type UserService struct {
	repo     ports.UserRepository
	accounts AccountCreator
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time
}

func NewUserService(repo ports.UserRepository, accounts AccountCreator, audit ports.AuditSink, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, accounts: accounts, audit: audit, log: log, now: time.Now}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Create(ctx context.Context, in ports.CreateAccountInput) (*domain.User, error) {
	return s.accounts.CreatePrivilegedAccount(ctx, in)
}

// Update applies the non-nil fields of in to the user identified by id.
func (s *UserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		user.Name = name
	}
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", domain.ErrInvalidInput)
		}
		user.Email = email
	}
	if in.Role != nil {
		role, ok := domain.ParseRole(*in.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *in.Role)
		}
		user.Role = role
	}
	user.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.emit(domain.EventUserUpdated, updated.Email, in.ActorID, updated.Role)
	s.log.Info().Str("user_id", updated.ID).Str("actor_id", in.ActorID).Msg("user updated")
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.emit(domain.EventUserDeleted, user.Email, actorID, user.Role)
	s.log.Info().Str("user_id", id).Str("actor_id", actorID).Msg("user deleted")
	return nil
}

// EnsureAdmin creates an administrator with the given credentials unless the
// email is already registered. It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return false, err
	}

	if name == "" {
		name = "Administrator"
	}
	_, err = s.accounts.CreatePrivilegedAccount(ctx, ports.CreateAccountInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, domain.ErrDuplicateIdentity) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) emit(kind domain.AuthEventKind, subject, actorID string, role domain.Role) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(domain.AuthEvent{
		Kind:       kind,
		Subject:    subject,
		ActorID:    actorID,
		Role:       role,
		OccurredAt: s.now().UTC(),
	})
}

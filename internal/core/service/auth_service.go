package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/retailhub/backoffice/internal/core/domain"
	"github.com/retailhub/backoffice/internal/core/ports"
	"github.com/retailhub/backoffice/pkg/jwtx"
)

// TokenIssuer signs session tokens. *jwtx.Signer implements it.
type TokenIssuer interface {
	Issue(claims jwtx.Claims) (string, error)
}

// AuthOptions holds the injected token and role policy.
type AuthOptions struct {
	TokenTTL    time.Duration
	DefaultRole domain.Role
	// BcryptCost defaults to bcrypt.DefaultCost. Tests lower it to bcrypt.MinCost.
	BcryptCost int
	Now        func() time.Time
}

// AuthService implements registration, login and privileged account creation.
type AuthService struct {
	repo    ports.UserRepository
	issuer  TokenIssuer
	limiter ports.LoginLimiter
	audit   ports.AuditSink
	opts    AuthOptions
	log     zerolog.Logger

	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewAuthService(
	repo ports.UserRepository,
	issuer TokenIssuer,
	limiter ports.LoginLimiter,
	audit ports.AuditSink,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = jwtx.DefaultTTL
	}
	if !opts.DefaultRole.Valid() {
		opts.DefaultRole = domain.LeastPrivilegedRole
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), opts.BcryptCost)
	return &AuthService{
		repo:      repo,
		issuer:    issuer,
		limiter:   limiter,
		audit:     audit,
		opts:      opts,
		log:       log,
		dummyHash: dummy,
	}
}

// Register creates a least-privileged account. It never issues a token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	user, err := s.createUser(ctx, in.Name, in.Email, in.Password, s.opts.DefaultRole)
	if err != nil {
		return nil, err
	}
	s.emit(domain.EventUserRegistered, user.Email, "", user.Role)
	s.log.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("user registered")
	return user, nil
}

// CreatePrivilegedAccount creates an account with an explicit role. Callers
// must already be authorized as administrators.
func (s *AuthService) CreatePrivilegedAccount(ctx context.Context, in ports.CreateAccountInput) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = s.opts.DefaultRole
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}

	user, err := s.createUser(ctx, in.Name, in.Email, in.Password, role)
	if err != nil {
		return nil, err
	}
	s.emit(domain.EventUserCreated, user.Email, in.ActorID, user.Role)
	s.log.Info().
		Str("user_id", user.ID).
		Str("role", user.Role.String()).
		Str("actor_id", in.ActorID).
		Msg("account created")
	return user, nil
}

// CreateManager creates a manager account regardless of in.Role.
func (s *AuthService) CreateManager(ctx context.Context, in ports.CreateAccountInput) (*domain.User, error) {
	in.Role = domain.RoleManager
	return s.CreatePrivilegedAccount(ctx, in)
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttled(ctx, email) {
		s.emit(domain.EventLoginThrottled, email, "", "")
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.loginFailed(ctx, email)
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.loginFailed(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	identity := user.Identity()
	now := s.opts.Now()
	claims := jwtx.NewClaims(identity.ID, identity.Email, identity.Role.String(), identity.Name, s.opts.TokenTTL, now)
	token, err := s.issuer.Issue(claims)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	identity.IssuedAt = claims.IssuedAtTime()
	identity.ExpiresAt = claims.ExpiresAtTime()

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login failures")
		}
	}
	s.emit(domain.EventLoginSucceeded, email, identity.ID, identity.Role)
	s.log.Info().Str("user_id", identity.ID).Str("role", identity.Role.String()).Msg("login succeeded")

	return &ports.LoginResult{Token: token, Identity: identity}, nil
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	now := s.opts.Now().UTC()
	return s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *AuthService) throttled(ctx context.Context, email string) bool {
	if s.limiter == nil {
		return false
	}
	blocked, err := s.limiter.Blocked(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
		return false
	}
	return blocked
}

func (s *AuthService) loginFailed(ctx context.Context, email string) {
	if s.limiter != nil {
		if err := s.limiter.Fail(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to record login failure")
		}
	}
	s.emit(domain.EventLoginFailed, email, "", "")
	s.log.Info().Msg("login failed")
}

func (s *AuthService) emit(kind domain.AuthEventKind, subject, actorID string, role domain.Role) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(domain.AuthEvent{
		Kind:       kind,
		Subject:    subject,
		ActorID:    actorID,
		Role:       role,
		OccurredAt: s.opts.Now().UTC(),
	})
}

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/retailhub/backoffice/internal/core/domain"
	"github.com/retailhub/backoffice/pkg/jwtx"
)

const testSecret = "middleware-test-secret-0123"

func signToken(t *testing.T, secret, role string, issuedAt time.Time, ttl time.Duration) string {
	t.Helper()
	signer, err := jwtx.NewSigner(secret)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	token, err := signer.Issue(jwtx.NewClaims("u-1", "alice@example.com", role, "Alice", ttl, issuedAt))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newVerifier(t *testing.T) *jwtx.Verifier {
	t.Helper()
	v, err := jwtx.NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	return v
}

func runAuth(t *testing.T, method, header string) (error, bool, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	handler := Auth(newVerifier(t))(func(echo.Context) error {
		called = true
		return nil
	})
	return handler(c), called, c
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, "admin", time.Now(), time.Hour)

	err, called, c := runAuth(t, http.MethodGet, "Bearer "+token)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	identity, ok := IdentityFrom(c)
	if !ok {
		t.Fatalf("identity not set")
	}
	if identity.ID != "u-1" || identity.Email != "alice@example.com" || identity.Role != domain.RoleAdmin || identity.Name != "Alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.ExpiresAt.IsZero() || identity.IssuedAt.IsZero() {
		t.Fatalf("expected iat/exp on identity")
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired := signToken(t, testSecret, "admin", time.Now().Add(-2*time.Hour), time.Hour)
	wrongKey := signToken(t, "some-other-secret-entirely", "admin", time.Now(), time.Hour)
	unknownRole := signToken(t, testSecret, "superuser", time.Now(), time.Hour)

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", domain.ErrMissingToken},
		{"other scheme", "Token abc", domain.ErrMissingToken},
		{"empty bearer", "Bearer ", domain.ErrMissingToken},
		{"malformed", "Bearer not-a-token", domain.ErrInvalidToken},
		{"expired", "Bearer " + expired, domain.ErrInvalidToken},
		{"wrong key", "Bearer " + wrongKey, domain.ErrInvalidToken},
		{"unknown role", "Bearer " + unknownRole, domain.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err, called, _ := runAuth(t, http.MethodGet, tt.header)
			if called {
				t.Fatalf("should not reach next")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAuthMiddleware_BearerSchemeIsCaseInsensitive(t *testing.T) {
	token := signToken(t, testSecret, "user", time.Now(), time.Hour)
	if err, called, _ := runAuth(t, http.MethodGet, "bearer "+token); err != nil || !called {
		t.Fatalf("expected lower-case scheme to pass, got %v", err)
	}
}

func TestAuthMiddleware_OptionsPassesThrough(t *testing.T) {
	err, called, c := runAuth(t, http.MethodOptions, "")
	if err != nil || !called {
		t.Fatalf("expected preflight to pass, got %v", err)
	}
	if _, ok := IdentityFrom(c); ok {
		t.Fatalf("preflight must not carry an identity")
	}
}

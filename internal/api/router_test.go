package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/retailhub/backoffice/internal/core/domain"
	"github.com/retailhub/backoffice/internal/core/ports"
	"github.com/retailhub/backoffice/internal/core/service"
	"github.com/retailhub/backoffice/pkg/jwtx"
)

const routerSecret = "router-test-secret-0123456789"

// memUsers is an in-memory ports.UserRepository.
type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*domain.User{}} }

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, domain.ErrDuplicateIdentity
		}
	}
	m.seq++
	c := *u
	c.ID = "u" + strconv.Itoa(m.seq)
	m.users[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUsers) List(_ context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	m.users[u.ID] = &c
	return u, nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type testServer struct {
	t     *testing.T
	srv   *httptest.Server
	auth  *service.AuthService
	users *memUsers
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := newMemUsers()
	signer, err := jwtx.NewSigner(routerSecret)
	if err != nil {
		t.Fatal(err)
	}
	verifier, err := jwtx.NewVerifier(routerSecret)
	if err != nil {
		t.Fatal(err)
	}
	auth := service.NewAuthService(repo, signer, nil, nil, service.AuthOptions{BcryptCost: bcrypt.MinCost}, zerolog.Nop())
	users := service.NewUserService(repo, auth, nil, zerolog.Nop())

	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		AuthService: auth,
		UserService: users,
		Verifier:    verifier,
		Log:         zerolog.Nop(),
		Registerer:  reg,
		Gatherer:    reg,
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, auth: auth, users: repo}
}

func (s *testServer) do(method, path, token, body string) (int, map[string]any) {
	s.t.Helper()
	req, err := http.NewRequest(method, s.srv.URL+path, strings.NewReader(body))
	if err != nil {
		s.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if status != http.StatusOK {
		s.t.Fatalf("login %s: expected 200, got %d %v", email, status, body)
	}
	return body["token"].(string)
}

func (s *testServer) seed(email string, role domain.Role) {
	s.t.Helper()
	if _, err := s.auth.CreatePrivilegedAccount(context.Background(), ports.CreateAccountInput{
		Name: "Seed", Email: email, Password: "secret1", Role: role,
	}); err != nil {
		s.t.Fatalf("seed %s: %v", email, err)
	}
}

func TestRouter_RegisterTwice(t *testing.T) {
	s := newTestServer(t)
	body := `{"name":"A","email":"a@x.com","password":"secret1","role":"admin"}`

	if status, _ := s.do(http.MethodPost, "/auth/register", "", body); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	status, resp := s.do(http.MethodPost, "/auth/register", "", body)
	if status != http.StatusBadRequest || resp["code"] != "duplicate_identity" {
		t.Fatalf("expected 400 duplicate_identity, got %d %v", status, resp)
	}
	if n := len(s.users.users); n != 1 {
		t.Fatalf("expected one record, got %d", n)
	}

	u, _ := s.users.FindByEmail(context.Background(), "a@x.com")
	if u.Role != domain.RoleUser {
		t.Fatalf("public registration must not grant %s", u.Role)
	}
}

func TestRouter_LoginAndMe(t *testing.T) {
	s := newTestServer(t)
	s.seed("carol@x.com", domain.RoleManager)

	status, resp := s.do(http.MethodPost, "/auth/login", "", `{"email":"carol@x.com","password":"wrong"}`)
	if status != http.StatusBadRequest || resp["code"] != "invalid_credentials" {
		t.Fatalf("expected 400 invalid_credentials, got %d %v", status, resp)
	}
	status, unknown := s.do(http.MethodPost, "/auth/login", "", `{"email":"ghost@x.com","password":"wrong"}`)
	if status != http.StatusBadRequest || unknown["error"] != resp["error"] {
		t.Fatalf("unknown email must look like a wrong password, got %d %v", status, unknown)
	}

	token := s.login("carol@x.com", "secret1")
	claims, err := jwtx.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Role != "manager" {
		t.Fatalf("expected decoded role manager, got %s", claims.Role)
	}

	status, me := s.do(http.MethodGet, "/auth/me", token, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if me["email"] != "carol@x.com" || me["role"] != "manager" || me["id"] != claims.UserID {
		t.Fatalf("unexpected claims: %v", me)
	}
	if int64(me["exp"].(float64)) != claims.ExpiresAt.Unix() {
		t.Fatalf("exp mismatch")
	}
}

func TestRouter_GuardErrors(t *testing.T) {
	s := newTestServer(t)

	status, resp := s.do(http.MethodGet, "/auth/me", "", "")
	if status != http.StatusUnauthorized || resp["code"] != "missing_token" {
		t.Fatalf("expected 401 missing_token, got %d %v", status, resp)
	}

	status, resp = s.do(http.MethodGet, "/auth/me", "not.a.token", "")
	if status != http.StatusForbidden || resp["code"] != "invalid_token" {
		t.Fatalf("expected 403 invalid_token, got %d %v", status, resp)
	}

	signer, _ := jwtx.NewSigner(routerSecret)
	expired, _ := signer.Issue(jwtx.NewClaims("u1", "a@x.com", "admin", "A", time.Hour, time.Now().Add(-2*time.Hour)))
	if status, _ := s.do(http.MethodGet, "/users", expired, ""); status != http.StatusForbidden {
		t.Fatalf("expected 403 for expired token, got %d", status)
	}
}

func TestRouter_UsersRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	s.seed("boss@x.com", domain.RoleAdmin)
	s.seed("mgr@x.com", domain.RoleManager)

	managerToken := s.login("mgr@x.com", "secret1")
	status, resp := s.do(http.MethodGet, "/users", managerToken, "")
	if status != http.StatusForbidden || resp["code"] != "forbidden" {
		t.Fatalf("expected 403 forbidden, got %d %v", status, resp)
	}

	adminToken := s.login("boss@x.com", "secret1")
	req, _ := http.NewRequest(http.MethodGet, s.srv.URL+"/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var list []map[string]any
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected two users, got %d", len(list))
	}
	for _, u := range list {
		if _, ok := u["password_hash"]; ok {
			t.Fatalf("hash leaked: %v", u)
		}
	}
}

func TestRouter_AdminUserLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.seed("boss@x.com", domain.RoleAdmin)
	admin := s.login("boss@x.com", "secret1")

	status, resp := s.do(http.MethodPost, "/auth/create-manager", admin, `{"name":"M","email":"m@x.com","password":"secret1"}`)
	if status != http.StatusCreated {
		t.Fatalf("create-manager: expected 201, got %d %v", status, resp)
	}

	status, resp = s.do(http.MethodPost, "/users", admin, `{"name":"U","email":"u@x.com","password":"secret1"}`)
	if status != http.StatusCreated {
		t.Fatalf("create user: expected 201, got %d %v", status, resp)
	}
	user := resp["user"].(map[string]any)
	id := user["id"].(string)
	if user["role"] != "user" {
		t.Fatalf("expected default role, got %v", user["role"])
	}

	status, resp = s.do(http.MethodPut, "/users/"+id, admin, `{"role":"manager"}`)
	if status != http.StatusOK || resp["user"].(map[string]any)["role"] != "manager" {
		t.Fatalf("update: got %d %v", status, resp)
	}

	if status, _ := s.do(http.MethodDelete, "/users/"+id, admin, ""); status != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", status)
	}
	if status, resp := s.do(http.MethodDelete, "/users/"+id, admin, ""); status != http.StatusNotFound || resp["code"] != "not_found" {
		t.Fatalf("second delete: expected 404, got %d %v", status, resp)
	}
}

func TestRouter_PreflightSkipsAuth(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, s.srv.URL+"/users", nil)
	req.Header.Set("Origin", "https://admin.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", res.StatusCode)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	if status, _ := s.do(http.MethodGet, "/health", "", ""); status != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", status)
	}
	res, err := http.Get(s.srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", res.StatusCode)
	}
}

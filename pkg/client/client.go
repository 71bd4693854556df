package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls the back-office API on behalf of a Session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	session *Session
}

// New returns a Client whose HTTP transport attaches the session token.
func New(baseURL string, session *Session) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: &Transport{Session: session},
		},
		session: session,
	}
}

func (c *Client) Session() *Session { return c.session }

// Login authenticates, stores the issued token and returns the identity it
// carries.
func (c *Client) Login(ctx context.Context, email, password string) (*Identity, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password}, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	if err := c.session.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("store session token: %w", err)
	}
	return c.session.CurrentUser(), nil
}

// Logout clears the stored token. It does not contact the server.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Register creates a self-service account. No token is issued.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	var resp messageResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", credentials{Name: name, Email: email, Password: password}, http.StatusCreated, &resp)
	return resp.Message, err
}

// Me returns the server-verified claims of the held token.
func (c *Client) Me(ctx context.Context) (*Claims, error) {
	if !c.session.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}
	var claims Claims
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, http.StatusOK, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// VerifySession asks the server to verify the held token. A rejection clears
// the session and is returned as an *APIError.
func (c *Client) VerifySession(ctx context.Context) (*Identity, error) {
	claims, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	return &Identity{
		ID:        claims.ID,
		Email:     claims.Email,
		Role:      claims.Role,
		Name:      claims.Name,
		IssuedAt:  time.Unix(claims.Iat, 0),
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (c *Client) CreateManager(ctx context.Context, name, email, password string) (string, error) {
	var resp messageResponse
	err := c.do(ctx, http.MethodPost, "/auth/create-manager", credentials{Name: name, Email: email, Password: password}, http.StatusCreated, &resp)
	return resp.Message, err
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, http.StatusOK, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var resp userEnvelope
	if err := c.do(ctx, http.MethodPost, "/users", req, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	var resp userEnvelope
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, http.StatusOK, nil)
}

// do sends a JSON request and decodes the expected response into target.
// A missing_token or invalid_token rejection clears the session.
func (c *Client) do(ctx context.Context, method, path string, body any, expectedStatus int, target any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		apiErr := parseErrorResponse(resp, data)
		if apiErr.sessionRejected() {
			_ = c.session.Clear()
		}
		return apiErr
	}

	if target == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

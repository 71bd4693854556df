package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/retailhub/backoffice/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrDuplicateIdentity, http.StatusBadRequest, "duplicate_identity"},
		{domain.ErrInvalidCredentials, http.StatusBadRequest, "invalid_credentials"},
		{domain.ErrMissingToken, http.StatusUnauthorized, "missing_token"},
		{domain.ErrInvalidToken, http.StatusForbidden, "invalid_token"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{domain.ErrUserNotFound, http.StatusNotFound, "not_found"},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "too_many_attempts"},
		{fmt.Errorf("%w: email is required", domain.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{fmt.Errorf("%w: mongo timeout", domain.ErrPersistence), http.StatusInternalServerError, "internal_error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{echo.ErrNotFound, http.StatusNotFound, "not_found"},
		{echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "method_not_allowed"},
		{echo.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.err.Error(), func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			handler(tt.err, e.NewContext(req, rec))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Code != tt.code || body.Error == "" {
				t.Fatalf("unexpected body: %+v", body)
			}
		})
	}
}

func TestHTTPErrorHandler_DoesNotLeakDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	NewHTTPErrorHandler(zerolog.Nop())(
		fmt.Errorf("%w: connection to 10.0.0.5 refused", domain.ErrPersistence),
		e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec),
	)

	var body errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "Internal server error" {
		t.Fatalf("expected generic message, got %q", body.Error)
	}
}

func TestHTTPErrorHandler_InvalidInputMessage(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	NewHTTPErrorHandler(zerolog.Nop())(
		fmt.Errorf("%w: email must be a valid email", domain.ErrInvalidInput),
		e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec),
	)

	var body errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "email must be a valid email" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}

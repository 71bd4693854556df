package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_AttachesBearer(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	session := NewSession(NewMemoryStorage())
	token := issueToken(t, RoleUser, time.Now(), time.Hour)
	require.NoError(t, session.SetToken(token))

	httpClient := &http.Client{Transport: &Transport{Session: session}}
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer "+token, got)
	assert.Empty(t, req.Header.Get("Authorization"), "caller request must not be mutated")
}

func TestTransport_NoTokenForwardsUnmodified(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Values("Authorization")
	}))
	defer srv.Close()

	httpClient := &http.Client{Transport: &Transport{Session: NewSession(NewMemoryStorage())}}
	resp, err := httpClient.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, got)
}

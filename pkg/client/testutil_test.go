package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/retailhub/backoffice/pkg/jwtx"
)

const testSecret = "client-test-secret-0123456789"

func issueToken(t *testing.T, role string, issuedAt time.Time, ttl time.Duration) string {
	t.Helper()
	signer, err := jwtx.NewSigner(testSecret)
	require.NoError(t, err)
	token, err := signer.Issue(jwtx.NewClaims("u-1", "carol@example.com", role, "Carol", ttl, issuedAt))
	require.NoError(t, err)
	return token
}

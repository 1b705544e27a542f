package token

import (
	"testing"
	"time"

	"account-admin-svc/src/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("user-secret", "admin-secret", 24*time.Hour)
}

func TestIssueAndVerifyUser(t *testing.T) {
	s := newTestService()
	issued, err := s.IssueUser("ann@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), issued.ExpiresAt, time.Minute)

	subject, err := s.VerifyUser(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", subject)
}

func TestIssueAndVerifyAdmin(t *testing.T) {
	s := newTestService()
	issued, err := s.IssueAdmin("root@example.com")
	require.NoError(t, err)

	subject, err := s.VerifyAdmin(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", subject)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	s := newTestService()
	userToken, err := s.IssueUser("ann@example.com")
	require.NoError(t, err)
	adminToken, err := s.IssueAdmin("root@example.com")
	require.NoError(t, err)

	_, err = s.VerifyAdmin(userToken.Token)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = s.VerifyUser(adminToken.Token)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestAdminSecretWithoutRoleFlagIsRejected(t *testing.T) {
	s := newTestService()
	claims := &Claims{
		IsAdmin: false,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "root@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("admin-secret"))
	require.NoError(t, err)

	_, err = s.VerifyAdmin(signed)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	s := newTestService()

	expired := newTestService()
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expiredToken, err := expired.IssueUser("ann@example.com")
	require.NoError(t, err)

	foreign := NewService("other-secret", "other-admin", time.Hour)
	foreignToken, err := foreign.IssueUser("ann@example.com")
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ann@example.com"},
	}).SignedString([]byte("user-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("user-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ann@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "expired", token: expiredToken.Token},
		{name: "wrong secret", token: foreignToken.Token},
		{name: "missing expiry", token: noExpiry},
		{name: "missing subject", token: noSubject},
		{name: "alg none", token: unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.VerifyUser(tt.token)
			assert.ErrorIs(t, err, models.ErrUnauthenticated)
		})
	}
}

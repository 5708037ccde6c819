package session

import (
	"context"
	"testing"
	"time"

	"hotelier/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(now *time.Time) *Manager {
	m := NewManager(NewMemoryStore(), "test-secret", time.Hour)
	m.now = func() time.Time { return *now }
	return m
}

func TestIssueAndResolve(t *testing.T) {
	now := time.Now()
	m := newTestManager(&now)
	ctx := context.Background()

	token, expiresAt, err := m.Issue(ctx, &models.User{ID: 42, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	s, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.UserID)
	assert.True(t, s.IsAdmin())
}

func TestRevokedSessionIsRejected(t *testing.T) {
	now := time.Now()
	m := newTestManager(&now)
	ctx := context.Background()

	token, _, err := m.Issue(ctx, &models.User{ID: 7, Role: models.RoleCustomer})
	require.NoError(t, err)
	s, err := m.Resolve(ctx, token)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, s.ID))

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestExpiredToken(t *testing.T) {
	now := time.Now()
	m := newTestManager(&now)
	ctx := context.Background()

	token, _, err := m.Issue(ctx, &models.User{ID: 7, Role: models.RoleCustomer})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestForeignTokensAreRejected(t *testing.T) {
	now := time.Now()
	m := newTestManager(&now)
	ctx := context.Background()

	other := NewManager(NewMemoryStore(), "other-secret", time.Hour)
	token, _, err := other.Issue(ctx, &models.User{ID: 1})
	require.NoError(t, err)
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sid": "x"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Resolve(ctx, unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Resolve(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), &Session{ID: "abc", UserID: 3})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc", s.ID)
}

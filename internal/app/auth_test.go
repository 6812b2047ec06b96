package app

import (
	"context"
	"testing"
	"time"

	"github.com/dkeye/Meet/internal/adapters/store/memstore"
	"github.com/dkeye/Meet/internal/core"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	auth, err := NewAuthService(memstore.New(), "test-secret", time.Hour, bcrypt.MinCost)
	require.NoError(t, err)
	return auth
}

func TestAuthRegisterLoginResolve(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	user, err := auth.Register(ctx, "alice", "Alice A.", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)

	token, logged, err := auth.Login(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	id, err := auth.ResolveIdentity(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, "Alice A.", id.DisplayName)

	me, err := auth.Me(ctx, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}

func TestAuthRejects(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)
	_, err := auth.Register(ctx, "alice", "", "password1")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "alice", "", "password2")
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = auth.Register(ctx, "bob", "", "123")
	assert.ErrorIs(t, err, core.ErrBadRequest)

	_, _, err = auth.Login(ctx, "alice", "nope")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	_, _, err = auth.Login(ctx, "ghost", "password1")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = auth.ResolveIdentity(ctx, "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = auth.ResolveIdentity(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestAuthRejectsForeignAndExpiredTokens(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	other, err := NewAuthService(memstore.New(), "other-secret", time.Hour, bcrypt.MinCost)
	require.NoError(t, err)
	foreign, err := other.Issue(identity("u1"))
	require.NoError(t, err)
	_, err = auth.ResolveIdentity(ctx, foreign)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		Name: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = auth.ResolveIdentity(ctx, signed)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestNewAuthServiceNeedsSecret(t *testing.T) {
	_, err := NewAuthService(memstore.New(), "", time.Hour, 0)
	assert.Error(t, err)
}

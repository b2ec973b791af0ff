package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/philoatlas-backend/internal/platform/apierr"
	"github.com/yungbote/philoatlas-backend/internal/platform/ctxutil"
)

func TestSignupLoginProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Signup(ctx, " hypatia ", "alexandria")
	require.NoError(t, err)
	assert.Equal(t, "hypatia", user.Username)
	assert.NotEqual(t, "alexandria", user.Password)

	res, err := env.auth.Login(ctx, "hypatia", "alexandria")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	assert.Equal(t, user.ID, res.User.ID)

	authed, err := env.auth.SetContextFromToken(ctx, res.AccessToken)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(authed)
	require.NotNil(t, rd)
	assert.Equal(t, user.ID, rd.UserID)
	assert.Equal(t, "hypatia", rd.Username)

	profile, err := env.auth.Profile(authed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)

	_, err = env.auth.Profile(ctx)
	require.ErrorIs(t, err, apierr.ErrUnauthorized)
}

func TestSignupRejectsDuplicatesAndBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, "zeno", "paradox")
	require.NoError(t, err)

	_, err = env.auth.Signup(ctx, "zeno", "another")
	require.ErrorIs(t, err, apierr.ErrUnauthorized)

	_, err = env.auth.Signup(ctx, "ab", "longenough")
	require.ErrorIs(t, err, apierr.ErrValidation)

	_, err = env.auth.Signup(ctx, "parmenides", "short")
	require.ErrorIs(t, err, apierr.ErrValidation)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, "epicurus", "garden")
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, "epicurus", "wrong-password")
	require.ErrorIs(t, err, apierr.ErrUnauthorized)

	_, err = env.auth.Login(ctx, "nobody", "garden")
	require.ErrorIs(t, err, apierr.ErrUnauthorized)
}

func TestSetContextFromTokenRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.SetContextFromToken(ctx, "not-a-jwt")
	require.ErrorIs(t, err, apierr.ErrUnauthorized)

	sign := func(secret string, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	id := uuid.NewString()

	_, err = env.auth.SetContextFromToken(ctx, sign("other-secret", jwt.MapClaims{"sub": id, "exp": time.Now().Add(time.Hour).Unix()}))
	require.ErrorIs(t, err, apierr.ErrUnauthorized)

	_, err = env.auth.SetContextFromToken(ctx, sign("test-secret", jwt.MapClaims{"sub": id, "exp": time.Now().Add(-time.Hour).Unix()}))
	require.ErrorIs(t, err, apierr.ErrUnauthorized)

	_, err = env.auth.SetContextFromToken(ctx, sign("test-secret", jwt.MapClaims{"sub": id}))
	require.ErrorIs(t, err, apierr.ErrUnauthorized)

	_, err = env.auth.SetContextFromToken(ctx, sign("test-secret", jwt.MapClaims{"sub": "not-a-uuid", "exp": time.Now().Add(time.Hour).Unix()}))
	require.ErrorIs(t, err, apierr.ErrUnauthorized)
}

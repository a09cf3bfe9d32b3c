package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest() *types.RegisterRequest {
	return &types.RegisterRequest{
		Email:     "Cook@Example.com",
		Username:  "cook",
		FirstName: "Иван",
		LastName:  "Поваров",
		Password:  "very-secret-1",
	}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()

	user, err := auth.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", user.Email)
	assert.NotEqual(t, "very-secret-1", user.PasswordHash)

	token, err := auth.Login(ctx, "cook@example.com", "very-secret-1")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "cook", claims.Username)

	_, err = auth.Login(ctx, "cook@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody@example.com", "very-secret-1")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthRegisterDuplicates(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := auth.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = auth.Register(ctx, registerRequest())
	require.ErrorIs(t, err, service.ErrDuplicate)

	sameName := registerRequest()
	sameName.Email = "other@example.com"
	_, err = auth.Register(ctx, sameName)
	assert.ErrorIs(t, err, service.ErrDuplicate)
}

func TestAuthValidateTokenRejectsForeignTokens(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	user := testhelpers.CreateUser(t, db, "cook")

	other := service.NewAuthService(db, "another-secret", time.Hour)
	foreign, err := other.GenerateToken(user)
	require.NoError(t, err)
	_, err = auth.ValidateToken(foreign)
	assert.Error(t, err)

	expired := service.NewAuthService(db, "test-secret", time.Nanosecond)
	stale, err := expired.GenerateToken(user)
	require.NoError(t, err)
	time.Sleep(time.Second)
	_, err = auth.ValidateToken(stale)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = auth.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestAuthSetPassword(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db, "cook")

	err := auth.SetPassword(ctx, user.ID, "wrong", "new-password-1")
	assert.ErrorIs(t, err, service.ErrValidation)

	require.NoError(t, auth.SetPassword(ctx, user.ID, testhelpers.TestPassword, "new-password-1"))
	_, err = auth.Login(ctx, user.Email, "new-password-1")
	assert.NoError(t, err)
}

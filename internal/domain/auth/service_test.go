package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/security"
	"stockledger/internal/domain/auth"
	"stockledger/internal/infrastructure/storage/memory"
)

func newAuth(t *testing.T) (*auth.Service, *auth.JWTService) {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.SeedDemo(context.Background()))

	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	cfg := auth.DefaultServiceConfig()
	cfg.MaxLoginAttempts = 3
	cfg.LockDuration = time.Minute
	return auth.NewService(store.Users(), store, jwtSvc, cfg), jwtSvc
}

func TestLoginIssuesScopedToken(t *testing.T) {
	svc, jwtSvc := newAuth(t)

	token, user, err := svc.Login(context.Background(), auth.Credentials{Username: "nv2", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotNil(t, user.LastLoginAt)

	uc, err := jwtSvc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	caller := security.CallerFromUser(uc)
	assert.Equal(t, security.RoleStaff, caller.Role)
	assert.Equal(t, "K2", caller.AssignedWarehouse)
	assert.Equal(t, "NV002", caller.EmployeeID)
	assert.Equal(t, user.ID.String(), caller.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, auth.Credentials{Username: "ghost", Password: "x"})
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))

	_, _, err = svc.Login(ctx, auth.Credentials{Username: "admin", Password: "wrong"})
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := svc.Login(ctx, auth.Credentials{Username: "nv1", Password: "bad"})
		require.True(t, apperror.Is(err, apperror.CodeUnauthorized))
	}

	_, _, err := svc.Login(ctx, auth.Credentials{Username: "nv1", Password: "123456"})
	assert.True(t, apperror.Is(err, apperror.CodeForbidden), "got %v", err)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	_, user, err := svc.Login(ctx, auth.Credentials{Username: "nv3", Password: "123456"})
	require.NoError(t, err)
	uid := user.ID.String()

	err = svc.ChangePassword(ctx, uid, "123456", "123")
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	err = svc.ChangePassword(ctx, uid, "nope", "secret99")
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	require.NoError(t, svc.ChangePassword(ctx, uid, "123456", "secret99"))

	_, _, err = svc.Login(ctx, auth.Credentials{Username: "nv3", Password: "123456"})
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
	_, _, err = svc.Login(ctx, auth.Credentials{Username: "nv3", Password: "secret99"})
	assert.NoError(t, err)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	_, jwtSvc := newAuth(t)
	other := auth.NewJWTService(auth.DefaultJWTConfig("other-secret"))

	u := auth.NewUser("admin", "", security.RoleAdmin)
	token, _, err := other.GenerateAccessToken(u)
	require.NoError(t, err)

	_, err = jwtSvc.ValidateToken(token)
	assert.Error(t, err)
}

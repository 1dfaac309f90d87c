package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository/memory"
	"github.com/robocoin/api/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuth(store *memory.Store) service.AuthService {
	return service.NewAuthService(store.Users(), testSecret, time.Hour, zerolog.Nop())
}

func seedLogin(t *testing.T, store *memory.Store, login, password string, role models.Role, active bool) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		ID:           uuid.NewString(),
		Role:         role,
		Name:         login,
		Login:        login,
		PasswordHash: string(hash),
		IsActive:     active,
		CreatedAt:    seedTime(),
	}
	store.AddUser(user)
	return user
}

func TestAuthLogin(t *testing.T) {
	store := memory.NewStore()
	user := seedLogin(t, store, "ali_valiyev", "secret123", models.RoleStudent, true)
	svc := newAuth(store)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &models.LoginRequest{Login: "ali_valiyev", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)

	identity, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, models.RoleStudent, identity.Role)
}

func TestAuthLogin_BadCredentials(t *testing.T) {
	store := memory.NewStore()
	seedLogin(t, store, "ali_valiyev", "secret123", models.RoleStudent, true)
	seedLogin(t, store, "ketgan", "secret123", models.RoleStudent, false)
	svc := newAuth(store)
	ctx := context.Background()

	_, err := svc.Login(ctx, &models.LoginRequest{Login: "ali_valiyev", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &models.LoginRequest{Login: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	// Right password, deactivated account.
	_, err = svc.Login(ctx, &models.LoginRequest{Login: "ketgan", Password: "secret123"})
	assert.ErrorIs(t, err, service.ErrUserInactive)
}

func TestAuthValidateToken_Rejects(t *testing.T) {
	store := memory.NewStore()
	seedLogin(t, store, "ali_valiyev", "secret123", models.RoleStudent, true)
	svc := newAuth(store)

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	// A token signed with another secret.
	other := service.NewAuthService(store.Users(), "ffffffffffffffffffffffffffffffff", time.Hour, zerolog.Nop())
	resp, err := other.Login(context.Background(), &models.LoginRequest{Login: "ali_valiyev", Password: "secret123"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	// An expired token.
	stale := service.NewAuthService(store.Users(), testSecret, -time.Minute, zerolog.Nop())
	resp, err = stale.Login(context.Background(), &models.LoginRequest{Login: "ali_valiyev", Password: "secret123"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthMe(t *testing.T) {
	store := memory.NewStore()
	user := seedLogin(t, store, "ali_valiyev", "secret123", models.RoleStudent, true)
	gone := seedLogin(t, store, "ketgan", "secret123", models.RoleStudent, false)
	svc := newAuth(store)
	ctx := context.Background()

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ali_valiyev", me.Login)

	_, err = svc.Me(ctx, uuid.NewString())
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	_, err = svc.Me(ctx, gone.ID)
	assert.ErrorIs(t, err, service.ErrUserInactive)
}

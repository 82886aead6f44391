package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/repository"
	"videosplus/storefront/internal/service"
	"videosplus/storefront/internal/storage"
)

const testSecret = "test-secret"

func legacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func newRepos(t *testing.T, defaults domain.Defaults) *repository.Repositories {
	t.Helper()
	docs := repository.NewDocuments(storage.NewMemoryStore(defaults, nil), repository.Options{Defaults: defaults})
	t.Cleanup(docs.Close)
	return repository.NewRepositories(docs)
}

func TestAuthService_Login(t *testing.T) {
	repos := newRepos(t, domain.Defaults{
		Admin: &domain.User{ID: "admin", Email: "admin@videosplus.test", Name: "Admin", Password: legacyHash("admin123")},
	})
	auth := service.NewAuthService(repos.Users, repos.Sessions, testSecret, time.Hour, nil)
	ctx := context.Background()

	hashed, err := auth.HashPassword("customer-pass")
	require.NoError(t, err)
	_, err = repos.Users.Create(ctx, domain.User{Email: "buyer@videosplus.test", Password: hashed, Role: domain.RoleCustomer})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
		wantRole domain.Role
	}{
		{name: "legacy sha-256 hash", email: "admin@videosplus.test", password: "admin123", wantRole: domain.RoleAdmin},
		{name: "bcrypt hash", email: "BUYER@videosplus.test", password: "customer-pass", wantRole: domain.RoleCustomer},
		{name: "wrong password", email: "admin@videosplus.test", password: "nope", wantErr: service.ErrAuthenticationFailed},
		{name: "unknown email", email: "ghost@videosplus.test", password: "admin123", wantErr: service.ErrAuthenticationFailed},
		{name: "empty credentials", wantErr: service.ErrAuthenticationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, user, err := auth.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, tt.wantRole, user.Role)
			assert.Empty(t, user.Password, "hash is never returned")

			session, err := repos.Sessions.GetByToken(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, user.ID, session.UserID)
			assert.NotEmpty(t, session.ExpiresAt)
		})
	}
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	repos := newRepos(t, domain.Defaults{
		Admin: &domain.User{ID: "admin", Email: "admin@videosplus.test", Password: legacyHash("admin123")},
	})
	auth := service.NewAuthService(repos.Users, repos.Sessions, testSecret, time.Hour, nil)
	ctx := context.Background()

	token, _, err := auth.Login(ctx, "admin@videosplus.test", "admin123")
	require.NoError(t, err)

	claims, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	require.NoError(t, auth.Logout(ctx, token))

	_, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, service.ErrSessionInactive)

	assert.ErrorIs(t, auth.Logout(ctx, token), service.ErrSessionInactive)
}

func TestAuthService_RejectsForeignTokens(t *testing.T) {
	repos := newRepos(t, domain.Defaults{
		Admin: &domain.User{ID: "admin", Email: "admin@videosplus.test", Password: legacyHash("admin123")},
	})
	auth := service.NewAuthService(repos.Users, repos.Sessions, testSecret, time.Hour, nil)
	other := service.NewAuthService(repos.Users, repos.Sessions, "another-secret", time.Hour, nil)
	ctx := context.Background()

	token, _, err := other.Login(ctx, "admin@videosplus.test", "admin123")
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = auth.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

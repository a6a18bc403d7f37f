package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesis-manager/internal/model"
	"thesis-manager/pkg/apierror"
)

func requireUnauthorized(t *testing.T, err error, reason error) {
	t.Helper()

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	require.Equal(t, "not authorized", apiErr.Message)
	if reason != nil {
		require.ErrorIs(t, err, reason)
	}
}

func TestAdminLoginRefreshScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.addAdmin(t, "admin-1", "adminuser", "Secret123!@#")

	first, err := f.auth.AdminLogin(ctx, "adminuser", "Secret123!@#")
	require.NoError(t, err)
	require.NotEmpty(t, first.AccessToken)
	require.NotEmpty(t, first.RefreshToken)

	f.advance(time.Minute)
	a2, err := f.auth.AdminRefresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.AccessToken, a2.AccessToken)

	principal, err := f.auth.VerifyAccessToken(a2.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, model.Principal{ID: "admin-1", Role: model.RoleAdmin}, principal)

	// The refresh identifier is carried forward, so the same token works again.
	_, err = f.auth.AdminRefresh(ctx, first.RefreshToken)
	require.NoError(t, err)

	second, err := f.auth.AdminLogin(ctx, "adminuser", "Secret123!@#")
	require.NoError(t, err)

	_, err = f.auth.AdminRefresh(ctx, first.RefreshToken)
	requireUnauthorized(t, err, model.ErrTokenMismatch)

	_, err = f.auth.AdminRefresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshKeepsRefreshIdentifier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, student("u-1", "s@uni.edu"), "Passw0rdLong")

	pair, err := f.auth.UserLogin(ctx, "s@uni.edu", "Passw0rdLong")
	require.NoError(t, err)
	require.Equal(t, 1, f.sessions.Len())

	before, err := f.sessions.Get(ctx, SessionKey(SessionUser, "u-1"))
	require.NoError(t, err)
	require.NotNil(t, before)

	_, err = f.auth.UserRefresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	after, err := f.sessions.Get(ctx, SessionKey(SessionUser, "u-1"))
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, before.RefreshIdentifier, after.RefreshIdentifier)
	assert.NotEqual(t, before.AccessIdentifier, after.AccessIdentifier)
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.addAdmin(t, "admin-1", "adminuser", "Secret123!@#")
	f.addUser(t, lecturer("u-1", "l@uni.edu", false), "Passw0rdLong")

	adminPair, err := f.auth.AdminLogin(ctx, "adminuser", "Secret123!@#")
	require.NoError(t, err)
	userPair, err := f.auth.UserLogin(ctx, "l@uni.edu", "Passw0rdLong")
	require.NoError(t, err)

	require.NoError(t, f.auth.AdminLogout(ctx, "admin-1"))
	require.NoError(t, f.auth.AdminLogout(ctx, "admin-1"), "logout is idempotent")

	_, err = f.auth.AdminRefresh(ctx, adminPair.RefreshToken)
	requireUnauthorized(t, err, model.ErrSessionNotFound)

	// Sessions are partitioned, the user session survives the admin logout.
	_, err = f.auth.UserRefresh(ctx, userPair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.auth.UserLogout(ctx, "u-1"))
	_, err = f.auth.UserRefresh(ctx, userPair.RefreshToken)
	requireUnauthorized(t, err, model.ErrSessionNotFound)
}

func TestRefreshRejectsWrongVariant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.addAdmin(t, "admin-1", "adminuser", "Secret123!@#")
	f.addUser(t, student("u-1", "s@uni.edu"), "Passw0rdLong")

	adminPair, err := f.auth.AdminLogin(ctx, "adminuser", "Secret123!@#")
	require.NoError(t, err)
	userPair, err := f.auth.UserLogin(ctx, "s@uni.edu", "Passw0rdLong")
	require.NoError(t, err)

	_, err = f.auth.AdminRefresh(ctx, userPair.RefreshToken)
	requireUnauthorized(t, err, model.ErrRoleMismatch)

	_, err = f.auth.UserRefresh(ctx, adminPair.RefreshToken)
	requireUnauthorized(t, err, model.ErrRoleMismatch)

	_, err = f.auth.UserRefresh(ctx, userPair.AccessToken)
	requireUnauthorized(t, err, model.ErrTokenInvalid)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.addAdmin(t, "admin-1", "adminuser", "Secret123!@#")
	f.addUser(t, student("u-1", "s@uni.edu"), "Passw0rdLong")

	inactive := student("u-2", "gone@uni.edu")
	inactive.IsActive = false
	f.addUser(t, inactive, "Passw0rdLong")

	orphan := model.User{ID: "u-3", Email: "orphan@uni.edu", IsActive: true}
	f.addUser(t, orphan, "Passw0rdLong")

	tests := []struct {
		name   string
		login  func() error
		reason error
	}{
		{"unknown admin", func() error { _, err := f.auth.AdminLogin(ctx, "nobody", "Secret123!@#"); return err }, model.ErrPrincipalNotFound},
		{"wrong admin password", func() error { _, err := f.auth.AdminLogin(ctx, "adminuser", "wrong"); return err }, model.ErrInvalidPassword},
		{"unknown user", func() error { _, err := f.auth.UserLogin(ctx, "x@uni.edu", "Passw0rdLong"); return err }, model.ErrPrincipalNotFound},
		{"wrong user password", func() error { _, err := f.auth.UserLogin(ctx, "s@uni.edu", "wrong"); return err }, model.ErrInvalidPassword},
		{"inactive user", func() error { _, err := f.auth.UserLogin(ctx, "gone@uni.edu", "Passw0rdLong"); return err }, model.ErrInactiveAccount},
		{"user without role", func() error { _, err := f.auth.UserLogin(ctx, "orphan@uni.edu", "Passw0rdLong"); return err }, model.ErrNoRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireUnauthorized(t, tt.login(), tt.reason)
		})
	}
	require.Equal(t, 0, f.sessions.Len())
}

func TestUserRefreshResolvesCurrentRole(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, lecturer("u-1", "l@uni.edu", false), "Passw0rdLong")

	pair, err := f.auth.UserLogin(ctx, "l@uni.edu", "Passw0rdLong")
	require.NoError(t, err)

	principal, err := f.auth.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, model.RoleLecturer, principal.Role)

	require.NoError(t, f.users.update("u-1", func(u *model.User) { u.Lecturer.IsModerator = true }))

	refreshed, err := f.auth.UserRefresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	principal, err = f.auth.VerifyAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, model.RoleModerator, principal.Role)

	require.NoError(t, f.users.SetActive(ctx, "u-1", false))
	_, err = f.auth.UserRefresh(ctx, pair.RefreshToken)
	requireUnauthorized(t, err, model.ErrInactiveAccount)
}

func TestRefreshAfterExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.addAdmin(t, "admin-1", "adminuser", "Secret123!@#")

	pair, err := f.auth.AdminLogin(ctx, "adminuser", "Secret123!@#")
	require.NoError(t, err)

	f.advance(2 * time.Hour)
	_, err = f.auth.VerifyAccessToken(pair.AccessToken)
	requireUnauthorized(t, err, model.ErrTokenInvalid)

	_, err = f.auth.AdminRefresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	f.advance(7 * 24 * time.Hour)
	_, err = f.auth.AdminRefresh(ctx, pair.RefreshToken)
	requireUnauthorized(t, err, model.ErrTokenInvalid)
}

func TestVerifyAccessTokenRejectsRefreshToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.addAdmin(t, "admin-1", "adminuser", "Secret123!@#")

	pair, err := f.auth.AdminLogin(ctx, "adminuser", "Secret123!@#")
	require.NoError(t, err)

	_, err = f.auth.VerifyAccessToken(pair.RefreshToken)
	requireUnauthorized(t, err, model.ErrTokenInvalid)

	_, err = f.auth.VerifyAccessToken("not-a-token")
	requireUnauthorized(t, err, model.ErrTokenInvalid)
}

func TestLogoutRequiresPrincipal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	requireUnauthorized(t, f.auth.UserLogout(context.Background(), " "), nil)
}

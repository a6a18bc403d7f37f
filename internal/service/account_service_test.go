package service

import (
	"context"
	"html"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesis-manager/internal/model"
	"thesis-manager/internal/security"
)

func TestCreateUserEmailsGeneratedPassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		role  model.Role
		email string
	}{
		{model.RoleStudent, "s@uni.edu"},
		{model.RoleLecturer, "l@uni.edu"},
		{model.RoleModerator, "m@uni.edu"},
	}

	for _, tt := range tests {
		summary, err := f.accounts.CreateUser(ctx, model.CreateUserRequest{
			Email:      tt.email,
			FullName:   "Someone",
			Role:       tt.role,
			AcademicID: "ID-" + string(tt.role),
		})
		require.NoError(t, err)
		assert.Equal(t, tt.role, summary.Role)
		assert.True(t, summary.IsActive)

		mail := f.nextMail(t)
		assert.Equal(t, tt.email, mail.To)
		match := accountPasswordPattern.FindStringSubmatch(mail.HTML)
		require.Len(t, match, 2)
		password := html.UnescapeString(match[1])
		assert.True(t, security.IsStrongPassword(password, true))

		pair, err := f.auth.UserLogin(ctx, tt.email, password)
		require.NoError(t, err)
		principal, err := f.auth.VerifyAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, tt.role, principal.Role)
	}

	list, err := f.accounts.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list.Users, 3)
}

func TestCreateUserRejectsDuplicateAndAdminRole(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, student("u-1", "s@uni.edu"), "Passw0rdLong")

	_, err := f.accounts.CreateUser(ctx, model.CreateUserRequest{
		Email: "S@uni.edu", FullName: "Dup", Role: model.RoleStudent, AcademicID: "S-2",
	})
	requireStatus(t, err, http.StatusConflict)

	_, err = f.accounts.CreateUser(ctx, model.CreateUserRequest{
		Email: "a@uni.edu", FullName: "Admin", Role: model.RoleAdmin, AcademicID: "A-1",
	})
	requireStatus(t, err, http.StatusBadRequest)
	require.Equal(t, 0, f.mailQueue.Len())
}

func TestDeactivateEndsSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, student("u-1", "s@uni.edu"), "Passw0rdLong")

	pair, err := f.auth.UserLogin(ctx, "s@uni.edu", "Passw0rdLong")
	require.NoError(t, err)

	require.NoError(t, f.accounts.SetActive(ctx, "u-1", false))
	_, err = f.auth.UserRefresh(ctx, pair.RefreshToken)
	requireUnauthorized(t, err, model.ErrSessionNotFound)

	requireStatus(t, f.accounts.SetActive(ctx, "missing", true), http.StatusNotFound)

	require.NoError(t, f.accounts.SetActive(ctx, "u-1", true))
	_, err = f.auth.UserLogin(ctx, "s@uni.edu", "Passw0rdLong")
	require.NoError(t, err)
}

func TestMe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.addAdmin(t, "admin-1", "adminuser", "Secret123!@#")
	f.addUser(t, lecturer("u-1", "l@uni.edu", false), "Passw0rdLong")

	profile, err := f.accounts.Me(ctx, model.Principal{ID: "admin-1", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "adminuser", profile.Username)
	assert.Equal(t, model.RoleAdmin, profile.Role)

	profile, err = f.accounts.Me(ctx, model.Principal{ID: "u-1", Role: model.RoleLecturer})
	require.NoError(t, err)
	assert.Equal(t, "l@uni.edu", profile.Email)
	assert.Equal(t, model.RoleLecturer, profile.Role)

	_, err = f.accounts.Me(ctx, model.Principal{ID: "gone", Role: model.RoleStudent})
	requireUnauthorized(t, err, model.ErrPrincipalNotFound)
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.accounts.SeedAdmin(ctx, "", ""))
	require.Len(t, f.admins.admins, 0)

	require.NoError(t, f.accounts.SeedAdmin(ctx, "adminuser", "Secret123!@#"))
	require.NoError(t, f.accounts.SeedAdmin(ctx, "other", "Secret123!@#"))
	require.Len(t, f.admins.admins, 1)

	_, err := f.auth.AdminLogin(ctx, "adminuser", "Secret123!@#")
	require.NoError(t, err)
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"thesis-manager/internal/model"
	"thesis-manager/internal/security"
	"thesis-manager/pkg/apierror"
)

type AuthService struct {
	admins   AdminStore
	users    UserStore
	sessions *SessionStore
	tokens   *security.TokenIssuer
}

func NewAuthService(admins AdminStore, users UserStore, sessions *SessionStore, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{admins: admins, users: users, sessions: sessions, tokens: tokens}
}

func (s *AuthService) AdminLogin(ctx context.Context, username string, password string) (model.TokenPair, error) {
	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return model.TokenPair{}, s.rejectLogin(SessionAdmin, username, err)
	}
	if !security.VerifyPassword(admin.PasswordHash, password) {
		return model.TokenPair{}, s.rejectLogin(SessionAdmin, username, model.ErrInvalidPassword)
	}

	return s.startSession(ctx, SessionAdmin, admin.ID, model.RoleAdmin)
}

func (s *AuthService) UserLogin(ctx context.Context, email string, password string) (model.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return model.TokenPair{}, s.rejectLogin(SessionUser, email, err)
	}
	if !user.IsActive {
		return model.TokenPair{}, s.rejectLogin(SessionUser, email, model.ErrInactiveAccount)
	}
	if !security.VerifyPassword(user.PasswordHash, password) {
		return model.TokenPair{}, s.rejectLogin(SessionUser, email, model.ErrInvalidPassword)
	}

	role, ok := model.ResolveRole(user)
	if !ok {
		return model.TokenPair{}, s.rejectLogin(SessionUser, email, model.ErrNoRole)
	}

	return s.startSession(ctx, SessionUser, user.ID, role)
}

func (s *AuthService) AdminRefresh(ctx context.Context, refreshToken string) (model.AccessToken, error) {
	return s.refresh(ctx, SessionAdmin, refreshToken)
}

func (s *AuthService) UserRefresh(ctx context.Context, refreshToken string) (model.AccessToken, error) {
	return s.refresh(ctx, SessionUser, refreshToken)
}

func (s *AuthService) AdminLogout(ctx context.Context, adminID string) error {
	return s.logout(ctx, SessionAdmin, adminID)
}

func (s *AuthService) UserLogout(ctx context.Context, userID string) error {
	return s.logout(ctx, SessionUser, userID)
}

// VerifyAccessToken checks the signature and expiry of an access token and
// returns the principal it was issued to.
func (s *AuthService) VerifyAccessToken(token string) (model.Principal, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return model.Principal{}, apierror.Unauthorized(errors.Join(model.ErrTokenInvalid, err))
	}
	if _, ok := model.ParseRole(string(claims.Role)); !ok {
		return model.Principal{}, apierror.Unauthorized(model.ErrTokenInvalid)
	}
	return model.Principal{ID: claims.Subject, Role: claims.Role}, nil
}

func (s *AuthService) startSession(ctx context.Context, kind SessionKind, principalID string, role model.Role) (model.TokenPair, error) {
	accessID, err := security.RandomIdentifier()
	if err != nil {
		return model.TokenPair{}, err
	}
	refreshID, err := security.RandomIdentifier()
	if err != nil {
		return model.TokenPair{}, err
	}

	accessToken, err := s.tokens.IssueAccessToken(security.TokenPayload{Subject: principalID, Role: role, Identifier: accessID})
	if err != nil {
		return model.TokenPair{}, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(security.TokenPayload{Subject: principalID, Role: role, Identifier: refreshID})
	if err != nil {
		return model.TokenPair{}, err
	}

	record := model.SessionRecord{AccessIdentifier: accessID, RefreshIdentifier: refreshID}
	if err := s.sessions.Save(ctx, kind, principalID, record); err != nil {
		return model.TokenPair{}, err
	}

	slog.Info("login succeeded", "kind", kind, "principal_id", principalID, "role", role)
	return model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) refresh(ctx context.Context, kind SessionKind, refreshToken string) (model.AccessToken, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return model.AccessToken{}, s.rejectRefresh(kind, "", errors.Join(model.ErrTokenInvalid, err))
	}

	if !roleMatchesKind(kind, claims.Role) {
		return model.AccessToken{}, s.rejectRefresh(kind, claims.Subject, model.ErrRoleMismatch)
	}

	if claims.ExpiresAt == nil || !s.tokens.Now().Before(claims.ExpiresAt.Time) {
		return model.AccessToken{}, s.rejectRefresh(kind, claims.Subject, model.ErrTokenExpired)
	}

	session, err := s.sessions.Load(ctx, kind, claims.Subject)
	if errors.Is(err, model.ErrSessionNotFound) {
		return model.AccessToken{}, s.rejectRefresh(kind, claims.Subject, err)
	}
	if err != nil {
		return model.AccessToken{}, err
	}

	if session.RefreshIdentifier != claims.Identifier {
		return model.AccessToken{}, s.rejectRefresh(kind, claims.Subject, model.ErrTokenMismatch)
	}

	role, err := s.currentRole(ctx, kind, claims.Subject)
	if err != nil {
		if isAuthFailure(err) {
			return model.AccessToken{}, s.rejectRefresh(kind, claims.Subject, err)
		}
		return model.AccessToken{}, err
	}

	accessID, err := security.RandomIdentifier()
	if err != nil {
		return model.AccessToken{}, err
	}
	accessToken, err := s.tokens.IssueAccessToken(security.TokenPayload{Subject: claims.Subject, Role: role, Identifier: accessID})
	if err != nil {
		return model.AccessToken{}, err
	}

	session.AccessIdentifier = accessID
	if err := s.sessions.Save(ctx, kind, claims.Subject, session); err != nil {
		return model.AccessToken{}, err
	}

	slog.Info("access token refreshed", "kind", kind, "principal_id", claims.Subject, "role", role)
	return model.AccessToken{AccessToken: accessToken}, nil
}

// currentRole re-reads the principal so that deactivation and role changes
// since login take effect on the next refresh.
func (s *AuthService) currentRole(ctx context.Context, kind SessionKind, principalID string) (model.Role, error) {
	if kind == SessionAdmin {
		if _, err := s.admins.FindByID(ctx, principalID); err != nil {
			return "", err
		}
		return model.RoleAdmin, nil
	}

	user, err := s.users.FindByID(ctx, principalID)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", model.ErrInactiveAccount
	}
	role, ok := model.ResolveRole(user)
	if !ok {
		return "", model.ErrNoRole
	}
	return role, nil
}

func (s *AuthService) logout(ctx context.Context, kind SessionKind, principalID string) error {
	if strings.TrimSpace(principalID) == "" {
		return apierror.Unauthorized(model.ErrUnauthorized)
	}
	if err := s.sessions.Delete(ctx, kind, principalID); err != nil {
		return err
	}

	slog.Info("logout", "kind", kind, "principal_id", principalID)
	return nil
}

func (s *AuthService) rejectLogin(kind SessionKind, login string, reason error) error {
	if !isAuthFailure(reason) {
		return reason
	}
	slog.Warn("login rejected", "kind", kind, "login", login, "reason", reason)
	return apierror.Unauthorized(reason)
}

func (s *AuthService) rejectRefresh(kind SessionKind, principalID string, reason error) error {
	slog.Warn("refresh rejected", "kind", kind, "principal_id", principalID, "reason", reason)
	return apierror.Unauthorized(reason)
}

func roleMatchesKind(kind SessionKind, role model.Role) bool {
	if kind == SessionAdmin {
		return role == model.RoleAdmin
	}
	return role.IsUserRole()
}

// isAuthFailure reports whether err is one of the reasons collapsed into a
// single unauthorized response. Anything else is an infrastructure failure.
func isAuthFailure(err error) bool {
	return errors.Is(err, model.ErrPrincipalNotFound) ||
		errors.Is(err, model.ErrInactiveAccount) ||
		errors.Is(err, model.ErrInvalidPassword) ||
		errors.Is(err, model.ErrNoRole)
}

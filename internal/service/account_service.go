package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"thesis-manager/internal/mailer"
	"thesis-manager/internal/model"
	"thesis-manager/internal/security"
	"thesis-manager/pkg/apierror"
)

type AccountService struct {
	admins    AdminStore
	users     UserStore
	sessions  *SessionStore
	mail      MailDispatcher
	templates mailer.Templates
}

func NewAccountService(admins AdminStore, users UserStore, sessions *SessionStore, mail MailDispatcher, templates mailer.Templates) *AccountService {
	return &AccountService{admins: admins, users: users, sessions: sessions, mail: mail, templates: templates}
}

// CreateUser registers a lecturer, moderator or student with a generated
// password that is sent to the new account's email address.
func (s *AccountService) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.UserSummary, error) {
	if !req.Role.IsUserRole() {
		return model.UserSummary{}, apierror.BadRequest("invalid role", string(req.Role))
	}

	password, err := security.GenerateStrongPassword()
	if err != nil {
		return model.UserSummary{}, err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return model.UserSummary{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(req.Email),
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	academicID := strings.TrimSpace(req.AcademicID)
	switch req.Role {
	case model.RoleStudent:
		user.Student = &model.Student{UserID: user.ID, StudentID: academicID}
	default:
		user.Lecturer = &model.Lecturer{UserID: user.ID, LecturerID: academicID, IsModerator: req.Role == model.RoleModerator}
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrPrincipalExists) {
			return model.UserSummary{}, apierror.New("CONFLICT", "account already exists", user.Email, http.StatusConflict)
		}
		return model.UserSummary{}, err
	}

	msg, err := s.templates.AccountCreated(user.Email, user.FullName, string(req.Role), password)
	if err == nil {
		err = s.mail.Dispatch(ctx, msg)
	}
	if err != nil {
		slog.Error("queue account email", "user_id", user.ID, "error", err)
	}

	slog.Info("user created", "user_id", user.ID, "role", req.Role)
	return summarize(user), nil
}

func (s *AccountService) ListUsers(ctx context.Context) (model.UserList, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return model.UserList{}, err
	}

	list := model.UserList{Users: make([]model.UserSummary, 0, len(users))}
	for _, u := range users {
		list.Users = append(list.Users, summarize(u))
	}
	return list, nil
}

// SetActive toggles a user account. Deactivation also ends the user's session
// so the refresh token stops working immediately.
func (s *AccountService) SetActive(ctx context.Context, userID string, active bool) error {
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, model.ErrPrincipalNotFound) {
			return apierror.NotFound("user not found", userID)
		}
		return err
	}

	if !active {
		if err := s.sessions.Delete(ctx, SessionUser, userID); err != nil {
			return err
		}
	}

	slog.Info("user active flag changed", "user_id", userID, "active", active)
	return nil
}

func (s *AccountService) Me(ctx context.Context, principal model.Principal) (model.Profile, error) {
	if principal.Role == model.RoleAdmin {
		admin, err := s.admins.FindByID(ctx, principal.ID)
		if err != nil {
			return model.Profile{}, unauthorizedIfMissing(err)
		}
		return model.Profile{ID: admin.ID, Role: model.RoleAdmin, Username: admin.Username}, nil
	}

	user, err := s.users.FindByID(ctx, principal.ID)
	if err != nil {
		return model.Profile{}, unauthorizedIfMissing(err)
	}
	role, _ := model.ResolveRole(user)
	return model.Profile{ID: user.ID, Role: role, Email: user.Email, FullName: user.FullName}, nil
}

// SeedAdmin creates the first admin account when none exists yet.
func (s *AccountService) SeedAdmin(ctx context.Context, username string, password string) error {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		slog.Warn("no admin account exists and no seed credentials are configured")
		return nil
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := model.Admin{ID: uuid.NewString(), Username: username, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	if err := s.admins.Create(ctx, admin); err != nil && !errors.Is(err, model.ErrPrincipalExists) {
		return err
	}

	slog.Info("seeded admin account", "username", username)
	return nil
}

func summarize(u model.User) model.UserSummary {
	role, _ := model.ResolveRole(u)
	return model.UserSummary{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: role, IsActive: u.IsActive}
}

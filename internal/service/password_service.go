package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"thesis-manager/internal/cache"
	"thesis-manager/internal/mailer"
	"thesis-manager/internal/model"
	"thesis-manager/internal/security"
	"thesis-manager/pkg/apierror"
)

type PasswordService struct {
	admins    AdminStore
	users     UserStore
	otps      cache.Cache[model.OTPRecord]
	otpTTL    time.Duration
	mail      MailDispatcher
	templates mailer.Templates
}

func NewPasswordService(admins AdminStore, users UserStore, otps cache.Cache[model.OTPRecord], otpTTL time.Duration, mail MailDispatcher, templates mailer.Templates) *PasswordService {
	return &PasswordService{
		admins:    admins,
		users:     users,
		otps:      otps,
		otpTTL:    otpTTL,
		mail:      mail,
		templates: templates,
	}
}

// RequestReset stores a one-time code for the user and queues it by email.
// A pending code for the same email is replaced.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrPrincipalNotFound) || (err == nil && !user.IsActive) {
		return apierror.NotFound("user not found", "")
	}
	if err != nil {
		return err
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return err
	}

	record := &model.OTPRecord{OTPCode: code, UserID: user.ID}
	if err := s.otps.Set(ctx, OTPKey(email), record, s.otpTTL); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	msg, err := s.templates.OTP(user.Email, code, s.otpTTL)
	if err != nil {
		return err
	}
	if err := s.mail.Dispatch(ctx, msg); err != nil {
		return fmt.Errorf("queue otp email: %w", err)
	}

	slog.Info("otp issued", "user_id", user.ID)
	return nil
}

// VerifyReset consumes the code and replaces the user's password with a
// generated one that is sent by email. A wrong code leaves the pending code
// in place.
func (s *PasswordService) VerifyReset(ctx context.Context, email string, code string) error {
	key := OTPKey(email)

	record, err := s.otps.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if record == nil {
		slog.Warn("otp verify rejected", "reason", model.ErrOTPNotFound)
		return apierror.Unauthorized(model.ErrOTPNotFound)
	}
	if subtle.ConstantTimeCompare([]byte(record.OTPCode), []byte(code)) != 1 {
		slog.Warn("otp verify rejected", "user_id", record.UserID, "reason", model.ErrOTPMismatch)
		return apierror.Unauthorized(model.ErrOTPMismatch)
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if errors.Is(err, model.ErrPrincipalNotFound) {
		return apierror.NotFound("user not found", "")
	}
	if err != nil {
		return err
	}

	password, err := security.GenerateStrongPassword()
	if err != nil {
		return err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	if err := s.otps.Delete(ctx, key); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}

	msg, err := s.templates.NewPassword(user.Email, password)
	if err == nil {
		err = s.mail.Dispatch(ctx, msg)
	}
	if err != nil {
		// The new password is already stored; the user can request another reset.
		slog.Error("queue new password email", "user_id", user.ID, "error", err)
	}

	slog.Info("password reset", "user_id", user.ID)
	return nil
}

// ChangePassword replaces the caller's password after checking the current
// one. Admins and users are looked up in their own stores.
func (s *PasswordService) ChangePassword(ctx context.Context, principal model.Principal, current string, next string) error {
	var (
		hash   string
		update func(context.Context, string, string) error
	)

	if principal.Role == model.RoleAdmin {
		admin, err := s.admins.FindByID(ctx, principal.ID)
		if err != nil {
			return unauthorizedIfMissing(err)
		}
		hash, update = admin.PasswordHash, s.admins.UpdatePassword
	} else {
		user, err := s.users.FindByID(ctx, principal.ID)
		if err != nil {
			return unauthorizedIfMissing(err)
		}
		if !user.IsActive {
			return apierror.Unauthorized(model.ErrInactiveAccount)
		}
		hash, update = user.PasswordHash, s.users.UpdatePassword
	}

	if !security.VerifyPassword(hash, current) {
		slog.Warn("change password rejected", "principal_id", principal.ID, "reason", model.ErrInvalidPassword)
		return apierror.Unauthorized(model.ErrInvalidPassword)
	}

	newHash, err := security.HashPassword(next)
	if err != nil {
		return err
	}
	if err := update(ctx, principal.ID, newHash); err != nil {
		return err
	}

	slog.Info("password changed", "principal_id", principal.ID, "role", principal.Role)
	return nil
}

func unauthorizedIfMissing(err error) error {
	if errors.Is(err, model.ErrPrincipalNotFound) {
		return apierror.Unauthorized(err)
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package model

import "errors"

var (
	// Principal related errors
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrPrincipalExists   = errors.New("principal already exists")
	ErrInactiveAccount   = errors.New("account is inactive")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrNoRole            = errors.New("user has no lecturer or student record")

	// Token and session related errors
	ErrTokenInvalid    = errors.New("token invalid or expired")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenMismatch   = errors.New("token identifier does not match session")
	ErrRoleMismatch    = errors.New("token role not accepted by this endpoint")
	ErrSessionNotFound = errors.New("session not found")

	// One-time password errors
	ErrOTPNotFound = errors.New("otp not found")
	ErrOTPMismatch = errors.New("otp does not match")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)

package security

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	identifierSize = 21
	otpSize        = 6
	passwordSize   = 16

	digits        = "0123456789"
	passwordChars = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789!@#$%^&*-_=+?"
	symbols       = "!@#$%^&*-_=+?"
)

// RandomIdentifier returns the nonce embedded in tokens and mirrored in the
// session record.
func RandomIdentifier() (string, error) {
	id, err := gonanoid.New(identifierSize)
	if err != nil {
		return "", fmt.Errorf("generate identifier: %w", err)
	}
	return id, nil
}

func GenerateOTP() (string, error) {
	code, err := gonanoid.Generate(digits, otpSize)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return code, nil
}

// GenerateStrongPassword returns a password containing at least one upper-case
// letter, lower-case letter, digit and symbol.
func GenerateStrongPassword() (string, error) {
	for {
		candidate, err := gonanoid.Generate(passwordChars, passwordSize)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		c := classify(candidate)
		if c.upper && c.lower && c.digit && c.symbol {
			return candidate, nil
		}
	}
}

// IsStrongPassword enforces the account password policy: at least 12
// characters with an upper-case letter and a digit, plus a symbol when
// requireSymbol is set.
func IsStrongPassword(password string, requireSymbol bool) bool {
	if utf8.RuneCountInString(password) < 12 {
		return false
	}

	c := classify(password)
	if !c.upper || !c.digit {
		return false
	}
	return !requireSymbol || c.symbol
}

type charClasses struct {
	upper, lower, digit, symbol bool
}

func classify(s string) charClasses {
	var c charClasses
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			c.upper = true
		case unicode.IsLower(r):
			c.lower = true
		case unicode.IsDigit(r):
			c.digit = true
		case strings.ContainsRune(symbols, r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			c.symbol = true
		}
	}
	return c
}

package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"thesis-manager/internal/model"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for every verification failure. Callers cannot
// tell a bad signature from an expired or malformed token.
var ErrInvalidToken = errors.New("invalid token")

type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

type TokenPayload struct {
	Subject    string
	Role       model.Role
	Identifier string
}

type TokenClaims struct {
	Role       model.Role `json:"role"`
	Identifier string     `json:"identifier"`
	Type       string     `json:"typ"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		accessTTL:     cfg.AccessTTL,
		refreshSecret: []byte(cfg.RefreshSecret),
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}, nil
}

// SetClock replaces the time source used for issuing and verifying tokens.
func (i *TokenIssuer) SetClock(now func() time.Time) {
	i.now = now
}

func (i *TokenIssuer) Now() time.Time {
	return i.now()
}

func (i *TokenIssuer) IssueAccessToken(payload TokenPayload) (string, error) {
	return i.sign(payload, TokenTypeAccess, i.accessSecret, i.accessTTL)
}

func (i *TokenIssuer) IssueRefreshToken(payload TokenPayload) (string, error) {
	return i.sign(payload, TokenTypeRefresh, i.refreshSecret, i.refreshTTL)
}

func (i *TokenIssuer) VerifyAccessToken(token string) (*TokenClaims, error) {
	return i.verify(token, TokenTypeAccess, i.accessSecret)
}

func (i *TokenIssuer) VerifyRefreshToken(token string) (*TokenClaims, error) {
	return i.verify(token, TokenTypeRefresh, i.refreshSecret)
}

func (i *TokenIssuer) sign(payload TokenPayload, typ string, secret []byte, ttl time.Duration) (string, error) {
	now := i.now().UTC()
	claims := TokenClaims{
		Role:       payload.Role,
		Identifier: payload.Identifier,
		Type:       typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (i *TokenIssuer) verify(token string, typ string, secret []byte) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != typ || claims.Subject == "" || claims.Identifier == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

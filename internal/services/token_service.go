package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"leadcrm/internal/apperr"
	"leadcrm/internal/authz"
	"leadcrm/internal/models"
)

type Claims struct {
	RoleID int `json:"role_id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens. It holds no
// mutable state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

func NewTokenService(secret []byte, ttl, leeway time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, leeway: leeway, now: time.Now}
}

// WithClock returns a copy reading time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject valid for the configured TTL.
func (s *TokenService) Issue(subject string, roleID int) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("token subject is empty")
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := &Claims{
		RoleID: roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify returns the identity carried by token. Every failure, whatever
// its cause, is apperr.ErrUnauthorized.
func (s *TokenService) Verify(token string) (models.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims,
		func(t *jwt.Token) (interface{}, error) {
			// only HMAC; rejects "none" and asymmetric algs
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return models.Identity{}, apperr.ErrUnauthorized
	}
	role := claims.RoleID
	if !authz.IsKnown(role) {
		role = authz.DefaultRole
	}
	return models.Identity{Email: claims.Subject, RoleID: role}, nil
}

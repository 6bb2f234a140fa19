package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadcrm/internal/apperr"
	"leadcrm/internal/authz"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTokenIssueVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewTokenService([]byte("secret"), 30*time.Minute, 0).WithClock(clock.Now)

	tok, exp, err := svc.Issue("a@x.com", authz.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(30*time.Minute), exp)

	who, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", who.Email)
	assert.Equal(t, authz.RoleAdmin, who.RoleID)

	clock.Advance(29 * time.Minute)
	_, err = svc.Verify(tok)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = svc.Verify(tok)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestTokenVerifyRejects(t *testing.T) {
	svc := NewTokenService([]byte("secret"), time.Hour, 0)
	other := NewTokenService([]byte("other"), time.Hour, 0)

	foreign, _, err := other.Issue("a@x.com", authz.RoleSales)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "a@x.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "a@x.com",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"empty":      "",
		"garbage":    "not.a.token",
		"foreign":    foreign,
		"alg none":   unsigned,
		"no exp":     noExp,
		"no subject": noSubject,
	} {
		_, err := svc.Verify(tok)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized, name)
	}
}

func TestTokenUnknownRoleFallsBackToDefault(t *testing.T) {
	svc := NewTokenService([]byte("secret"), time.Hour, 0)
	tok, _, err := svc.Issue("a@x.com", 999)
	require.NoError(t, err)
	who, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, authz.DefaultRole, who.RoleID)
}

func TestTokenIssueRequiresSubject(t *testing.T) {
	_, _, err := NewTokenService([]byte("secret"), time.Hour, 0).Issue("", authz.RoleSales)
	require.Error(t, err)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"leadcrm/internal/apperr"
	"leadcrm/internal/authz"
	"leadcrm/internal/models"
	"leadcrm/internal/repositories"
)

type AuthService interface {
	Signup(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	HashPassword(password string) (string, error)
}

type authService struct {
	users  repositories.UserRepository
	tokens *TokenService
	emails EmailService
	log    *zap.Logger
}

// NewAuthService wires the credential store to the token issuer. emails may
// be nil, in which case no welcome email is sent.
func NewAuthService(users repositories.UserRepository, tokens *TokenService, emails EmailService, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{users: users, tokens: tokens, emails: emails, log: log}
}

// NormalizeEmail is the form emails are stored, looked up and signed in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

// HashPassword bcrypts password at the default cost with a fresh salt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", apperr.ErrInvalid)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) Signup(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", apperr.ErrInvalid)
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return fmt.Errorf("signup %s: %w", email, apperr.ErrConflict)
	case !errors.Is(err, apperr.ErrNotFound):
		return fmt.Errorf("signup lookup: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	user := &models.User{Email: email, PasswordHash: hash, RoleID: authz.DefaultRole}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("signup %s: %w", email, err)
	}
	s.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", email))

	if s.emails != nil {
		if err := s.emails.SendWelcomeEmail(email); err != nil {
			s.log.Warn("welcome email failed", zap.String("email", email), zap.Error(err))
		}
	}
	return nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	email = NormalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.log.Info("login rejected", zap.String("email", email), zap.String("reason", "unknown user"))
			return nil, apperr.ErrUnauthorized
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	hash := strings.TrimSpace(user.PasswordHash)
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		s.log.Info("login rejected", zap.String("email", email), zap.String("reason", "password mismatch"))
		return nil, apperr.ErrUnauthorized
	}

	token, _, err := s.tokens.Issue(user.Email, user.RoleID)
	if err != nil {
		return nil, err
	}
	s.log.Info("login ok", zap.Int64("user_id", user.ID), zap.Int("role_id", user.RoleID))
	return &models.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

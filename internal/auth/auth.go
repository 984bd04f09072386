// Package auth signs in back-office users and guards the admin API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAdminNotFound      = errors.New("admin user not found")
	ErrWeakPassword       = errors.New("password must have at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidRole        = errors.New("invalid role")
)

type Service struct {
	db      *gorm.DB
	tokens  *Tokens
	limiter *Limiter
	logger  zerolog.Logger
}

func NewService(db *gorm.DB, tokens *Tokens, limiter *Limiter, logger zerolog.Logger) *Service {
	return &Service{db: db, tokens: tokens, limiter: limiter, logger: logger}
}

// LoginResult is returned to the SPA after a successful login.
type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      *models.AdminUser `json:"user"`
}

// Login checks the rate limit for clientIP first, so failed guesses and
// successful logins both consume the bucket.
func (s *Service) Login(ctx context.Context, email, password, clientIP string) (*LoginResult, error) {
	if !s.limiter.Allow(clientIP) {
		s.logger.Warn().Str("ip", clientIP).Msg("login rate limit exceeded")
		return nil, ErrTooManyAttempts
	}

	email = normalizeEmail(email)
	var u models.AdminUser
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info().Str("email", email).Msg("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.Active || !models.CheckPassword(u.PasswordHash, password) {
		s.logger.Info().Str("email", email).Bool("active", u.Active).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&u).Update("last_login_at", now).Error; err != nil {
		s.logger.Warn().Err(err).Uint("admin_id", u.ID).Msg("could not record last login")
	}
	u.LastLoginAt = &now

	token, exp, err := s.tokens.Issue(&u)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint("admin_id", u.ID).Msg("admin logged in")
	return &LoginResult{Token: token, ExpiresAt: exp, User: &u}, nil
}

// Authenticate verifies raw and reloads its admin. Tokens of removed or
// deactivated admins are rejected with ErrInvalidToken; role, email and name
// are taken from the row, not the token.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	var u models.AdminUser
	if err := s.db.WithContext(ctx).First(&u, claims.AdminID()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.Active {
		s.logger.Info().Uint("admin_id", u.ID).Msg("token of inactive admin rejected")
		return nil, ErrInvalidToken
	}
	claims.Role = u.Role
	claims.Email = u.Email
	claims.Name = u.Name
	return claims, nil
}

// Me loads the admin behind a token.
func (s *Service) Me(ctx context.Context, id uint) (*models.AdminUser, error) {
	var u models.AdminUser
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateAdmin registers a back-office user.
func (s *Service) CreateAdmin(ctx context.Context, email, name, password string, role models.Role) (*models.AdminUser, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if role == "" {
		role = models.RoleEditor
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	var cnt int64
	if err := s.db.WithContext(ctx).Model(&models.AdminUser{}).Where("email = ?", email).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := models.AdminUser{Email: email, Name: strings.TrimSpace(name), PasswordHash: hash, Role: role, Active: true}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

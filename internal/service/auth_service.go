package service

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"bithra/config"
	"bithra/internal/auth"
	"bithra/internal/domain"
	"bithra/internal/logger"
	"bithra/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type userStore interface {
	Create(u *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(u *models.User) error
}

type referralTracker interface {
	Track(referralCode string, newUserID uint) (*models.Referral, error)
}

type AuthService struct {
	cfg       *config.JWTConfig
	users     userStore
	referrals referralTracker
}

func NewAuthService(cfg *config.JWTConfig, users userStore, referrals referralTracker) *AuthService {
	return &AuthService{cfg: cfg, users: users, referrals: referrals}
}

type RegisterInput struct {
	Email        string
	Username     string
	Password     string
	FullName     string
	ReferralCode string
}

type AuthResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

const minPasswordLen = 8

func (s *AuthService) Register(in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if _, err := mail.ParseAddress(email); err != nil || len(username) < 3 || len(username) > 64 {
		return nil, ErrInvalidInput
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.users.GetByUsername(username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:              email,
		Username:           username,
		PasswordHash:       string(hash),
		Role:               domain.RoleUser,
		FullName:           strings.TrimSpace(in.FullName),
		Language:           "ar",
		EmailNotifications: true,
	}
	if err := s.users.Create(u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if in.ReferralCode != "" && s.referrals != nil {
		if _, err := s.referrals.Track(in.ReferralCode, u.ID); err != nil {
			logger.Component("auth").WithError(err).WithField("user_id", u.ID).Warn("referral code not applied")
		}
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	access, err := auth.GenerateAccessToken(s.cfg, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(s.cfg, u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	u, err := s.users.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCreds
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCreds
	}
	return s.issue(u)
}

// ChangePassword updates the user's password. Requires current password verification.
func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return notFound(err, ErrUserNotFound, "lookup user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	if len(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.users.Update(u)
}

func (s *AuthService) Refresh(refreshToken string) (*AuthResult, error) {
	userID, err := auth.ParseRefreshToken(s.cfg, refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	return s.issue(u)
}

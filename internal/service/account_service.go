package service

import (
	"fmt"
	"strings"

	"bithra/internal/models"
)

type accountStore interface {
	GetByID(id uint) (*models.User, error)
	Update(u *models.User) error
	UpdateFCMToken(userID uint, token string) error
}

type walletStore interface {
	GetOrCreate(userID uint) (*models.Wallet, error)
	ListTransactions(userID uint, limit, offset int) ([]models.WalletTransaction, error)
}

type AccountService struct {
	users   accountStore
	wallets walletStore
}

func NewAccountService(users accountStore, wallets walletStore) *AccountService {
	return &AccountService{users: users, wallets: wallets}
}

func (s *AccountService) Profile(userID uint) (*models.User, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "get user")
	}
	return u, nil
}

// SettingsInput is a partial update; nil fields are left unchanged.
type SettingsInput struct {
	FullName           *string `json:"full_name"`
	Phone              *string `json:"phone"`
	City               *string `json:"city"`
	Language           *string `json:"language"`
	EmailNotifications *bool   `json:"email_notifications"`
	AvatarURL          *string `json:"avatar_url"`
}

func (s *AccountService) UpdateSettings(userID uint, in SettingsInput) (*models.User, error) {
	u, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}
	if in.Language != nil && *in.Language != "ar" && *in.Language != "en" {
		return nil, ErrInvalidInput
	}
	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.City != nil {
		u.City = strings.TrimSpace(*in.City)
	}
	if in.Language != nil {
		u.Language = *in.Language
	}
	if in.EmailNotifications != nil {
		u.EmailNotifications = *in.EmailNotifications
	}
	if in.AvatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	if err := s.users.Update(u); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return u, nil
}

func (s *AccountService) SetFCMToken(userID uint, token string) error {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > 512 {
		return ErrInvalidInput
	}
	return s.users.UpdateFCMToken(userID, token)
}

func (s *AccountService) Wallet(userID uint) (*models.Wallet, error) {
	w, err := s.wallets.GetOrCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}
	return w, nil
}

func (s *AccountService) Transactions(userID uint, limit, offset int) ([]models.WalletTransaction, error) {
	list, err := s.wallets.ListTransactions(userID, clampLimit(limit, 20, 100), offset)
	if err != nil {
		return nil, fmt.Errorf("wallet transactions: %w", err)
	}
	if list == nil {
		list = []models.WalletTransaction{}
	}
	return list, nil
}

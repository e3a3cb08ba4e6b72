package service

import (
	"context"
	"encoding/json"
	"time"

	"bithra/internal/logger"
	"bithra/internal/models"
)

// Notifier stores an in-app notification and pushes it when possible.
type Notifier interface {
	Notify(userID uint, notifType, title, body string, data map[string]interface{}) error
}

type notificationStore interface {
	Create(n *models.Notification) error
	ListByUserID(userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(id, userID uint) error
	MarkAllRead(userID uint) (int64, error)
}

type pusher interface {
	SendToUser(ctx context.Context, fcmToken, notifType, title, body string, data map[string]interface{}) error
}

type NotificationService struct {
	repo  notificationStore
	users userLookup
	push  pusher
}

// NewNotificationService wires push when fcm is non-nil.
func NewNotificationService(repo notificationStore, users userLookup, fcm *FCMService) *NotificationService {
	s := &NotificationService{repo: repo, users: users}
	if fcm != nil {
		s.push = fcm
	}
	return s
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		return err
	}
	s.sendPush(userID, notifType, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(userID uint, notifType, title, body string, data map[string]interface{}) {
	if s.push == nil || s.users == nil {
		return
	}
	u, err := s.users.GetByID(userID)
	if err != nil || u == nil || u.FCMToken == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.push.SendToUser(ctx, u.FCMToken, notifType, title, body, data); err != nil {
		logger.Component("notification").WithError(err).WithField("user_id", userID).Warn("push failed")
	}
}

type NotificationPage struct {
	Items  []models.Notification `json:"items"`
	Unread int64                 `json:"unread"`
}

func (s *NotificationService) List(userID uint, unreadOnly bool, limit, offset int) (*NotificationPage, error) {
	items, err := s.repo.ListByUserID(userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &NotificationPage{Items: items, Unread: unread}, nil
}

func (s *NotificationService) CountUnread(userID uint) (int64, error) {
	return s.repo.CountUnread(userID)
}

func (s *NotificationService) MarkRead(userID, id uint) error {
	if err := s.repo.MarkRead(id, userID); err != nil {
		return notFound(err, ErrNotificationNotFound, "mark read")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	return s.repo.MarkAllRead(userID)
}

package handler

import (
	"net/http"

	"bithra/internal/middleware"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
)

type notificationService interface {
	List(userID uint, unreadOnly bool, limit, offset int) (*service.NotificationPage, error)
	MarkRead(userID, id uint) error
	MarkAllRead(userID uint) (int64, error)
}

type NotificationHandler struct {
	svc notificationService
}

func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// GET /me/notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	page, err := h.svc.List(middleware.GetUserID(c), c.Query("unread") == "true", limit, offset)
	if err != nil {
		respondError(c, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": page.Items, "unread": page.Unread})
}

// PUT /me/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(middleware.GetUserID(c), id); err != nil {
		respondError(c, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PUT /me/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "updated": n})
}

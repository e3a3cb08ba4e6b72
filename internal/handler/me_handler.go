package handler

import (
	"net/http"

	"bithra/internal/middleware"
	"bithra/internal/models"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
)

type accountService interface {
	Profile(userID uint) (*models.User, error)
	UpdateSettings(userID uint, in service.SettingsInput) (*models.User, error)
	SetFCMToken(userID uint, token string) error
}

type userDashboard interface {
	User(userID uint) (*service.UserDashboard, error)
}

type MeHandler struct {
	account   accountService
	dashboard userDashboard
}

func NewMeHandler(account accountService, dashboard userDashboard) *MeHandler {
	return &MeHandler{account: account, dashboard: dashboard}
}

// GET /me/profile
func (h *MeHandler) GetProfile(c *gin.Context) {
	u, err := h.account.Profile(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "could not load profile")
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateSettings applies a partial update; omitted fields are kept.
// PATCH /me/settings
func (h *MeHandler) UpdateSettings(c *gin.Context) {
	var req service.SettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	u, err := h.account.UpdateSettings(middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err, "could not update settings")
		return
	}
	c.JSON(http.StatusOK, u)
}

// RegisterFCMToken saves the device token for push notifications.
// POST /me/fcm-token
func (h *MeHandler) RegisterFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "token required")
		return
	}
	if err := h.account.SetFCMToken(middleware.GetUserID(c), req.Token); err != nil {
		respondError(c, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /me/dashboard
func (h *MeHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboard.User(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "could not load dashboard")
		return
	}
	c.JSON(http.StatusOK, d)
}

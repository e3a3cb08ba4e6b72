package handler

import (
	"net/http"

	"bithra/internal/middleware"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
)

type earlyBirdService interface {
	Register(userID uint) (*service.EarlyBirdView, bool, error)
	Get(userID uint) (*service.EarlyBirdView, error)
	Summary() (*service.EarlyBirdSummary, error)
}

type RewardsHandler struct {
	svc earlyBirdService
}

func NewRewardsHandler(svc earlyBirdService) *RewardsHandler {
	return &RewardsHandler{svc: svc}
}

// Summary lists the reward tiers with remaining slots.
// GET /rewards/early-bird
func (h *RewardsHandler) Summary(c *gin.Context) {
	s, err := h.svc.Summary()
	if err != nil {
		respondError(c, err, "could not load rewards")
		return
	}
	c.JSON(http.StatusOK, s)
}

// Register is idempotent: 201 on first registration, 200 afterwards.
// POST /rewards/early-bird
func (h *RewardsHandler) Register(c *gin.Context) {
	v, created, err := h.svc.Register(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "could not register")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, v)
}

// GET /rewards/early-bird/me
func (h *RewardsHandler) Me(c *gin.Context) {
	v, err := h.svc.Get(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "could not load registration")
		return
	}
	c.JSON(http.StatusOK, v)
}

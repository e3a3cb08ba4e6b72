package handler

import (
	"net/http"

	"bithra/internal/domain"
	"bithra/internal/middleware"
	"bithra/internal/models"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
)

type referralService interface {
	GetOrCreateCode(userID uint) (*models.ReferralCode, error)
	Track(referralCode string, newUserID uint) (*models.Referral, error)
	Stats(userID uint) (*service.ReferralStats, error)
	List(userID uint, limit, offset int) ([]service.ReferralView, error)
}

type ReferralHandler struct {
	svc referralService
}

func NewReferralHandler(svc referralService) *ReferralHandler {
	return &ReferralHandler{svc: svc}
}

// TrackRequest uses the camelCase names the web client posts.
type TrackRequest struct {
	ReferralCode string `json:"referralCode"`
	NewUserID    uint   `json:"newUserId"`
}

// TrackReferral records that newUserId signed up with referralCode.
// POST /referral-system/track
func (h *ReferralHandler) TrackReferral(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": service.ErrReferralInvalidInput.Error()})
		return
	}
	ref, err := h.svc.Track(req.ReferralCode, req.NewUserID)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			respondError(c, err, "could not track referral")
			return
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "تم تسجيل الإحالة بنجاح",
		"data": gin.H{
			"referralId":     ref.ID,
			"referrerId":     ref.ReferrerID,
			"referredUserId": ref.ReferredUserID,
			"status":         ref.Status,
			"createdAt":      ref.CreatedAt,
		},
	})
}

// GetTracking returns the caller's referral stats, tier and milestones.
// GET /referral-system/track
func (h *ReferralHandler) GetTracking(c *gin.Context) {
	stats, err := h.svc.Stats(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "could not load referral stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"stats":      stats,
			"tier":       stats.Tier,
			"milestones": stats.Milestones,
		},
	})
}

// GET /referral-system/tiers
func (h *ReferralHandler) Tiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tiers": domain.Tiers()})
}

// GetMyReferralCode returns the caller's code, creating one on first use.
// GET /me/referral-code
func (h *ReferralHandler) GetMyReferralCode(c *gin.Context) {
	rc, err := h.svc.GetOrCreateCode(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "could not get referral code")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":       rc.Code,
		"is_active":  rc.IsActive,
		"created_at": rc.CreatedAt,
	})
}

// GET /me/referrals
func (h *ReferralHandler) GetMyReferrals(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	list, err := h.svc.List(middleware.GetUserID(c), limit, offset)
	if err != nil {
		respondError(c, err, "could not list referrals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": list, "total": len(list)})
}

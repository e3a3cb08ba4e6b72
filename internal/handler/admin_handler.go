package handler

import (
	"context"
	"net/http"

	"bithra/internal/domain"
	"bithra/internal/middleware"
	"bithra/internal/models"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
)

type adminDashboard interface {
	Admin(ctx context.Context) (*service.AdminDashboard, error)
}

type valuationReviewer interface {
	ListPending(limit, offset int) ([]service.ValuationView, error)
	Complete(adminID, id uint, appraisedHalalas int64) (*service.ValuationView, error)
	Reject(adminID, id uint, reason string) (*service.ValuationView, error)
}

type reportLister interface {
	PendingReports(limit int) ([]models.ContentReport, error)
}

type loginService interface {
	Login(email, password string) (*service.AuthResult, error)
}

type AdminHandler struct {
	dashboard  adminDashboard
	valuations valuationReviewer
	reports    reportLister
	auth       loginService
}

func NewAdminHandler(dashboard adminDashboard, valuations valuationReviewer, reports reportLister, auth loginService) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, valuations: valuations, reports: reports, auth: auth}
}

// AdminLogin handles POST /admin/login; non-admin accounts are refused.
func (h *AdminHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err, "login failed")
		return
	}
	if res.User.Role != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboard.Admin(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to load stats")
		return
	}
	c.JSON(http.StatusOK, d)
}

// ListValuations handles GET /admin/valuations (pending queue).
func (h *AdminHandler) ListValuations(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	list, err := h.valuations.ListPending(limit, offset)
	if err != nil {
		respondError(c, err, "failed to list valuations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"valuations": list})
}

// CompleteValuation handles POST /admin/valuations/:id/complete.
func (h *AdminHandler) CompleteValuation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		AppraisedHalalas int64 `json:"appraised_halalas" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	v, err := h.valuations.Complete(middleware.GetUserID(c), id, req.AppraisedHalalas)
	if err != nil {
		respondError(c, err, "failed to complete valuation")
		return
	}
	c.JSON(http.StatusOK, v)
}

// RejectValuation handles POST /admin/valuations/:id/reject.
func (h *AdminHandler) RejectValuation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	v, err := h.valuations.Reject(middleware.GetUserID(c), id, req.Reason)
	if err != nil {
		respondError(c, err, "failed to reject valuation")
		return
	}
	c.JSON(http.StatusOK, v)
}

// ListReports handles GET /admin/reports.
func (h *AdminHandler) ListReports(c *gin.Context) {
	limit, _ := parseLimitOffset(c)
	list, err := h.reports.PendingReports(limit)
	if err != nil {
		respondError(c, err, "failed to list reports")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": list})
}

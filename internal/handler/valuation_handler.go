package handler

import (
	"context"
	"io"
	"net/http"

	"bithra/internal/domain"
	"bithra/internal/middleware"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
)

type valuationService interface {
	Submit(userID uint, in service.SubmitValuationInput) (*service.ValuationView, error)
	Get(userID, id uint, isAdmin bool) (*service.ValuationView, error)
	ListMine(userID uint, limit, offset int) ([]service.ValuationView, error)
	PriceMap(city string) (*service.PriceMap, error)
	AddPhoto(ctx context.Context, userID, id uint, file io.Reader) (*service.ValuationView, error)
}

type ValuationHandler struct {
	svc valuationService
}

func NewValuationHandler(svc valuationService) *ValuationHandler {
	return &ValuationHandler{svc: svc}
}

// POST /valuations
func (h *ValuationHandler) Submit(c *gin.Context) {
	var req service.SubmitValuationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	v, err := h.svc.Submit(middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err, "could not submit valuation")
		return
	}
	c.JSON(http.StatusCreated, v)
}

// GET /valuations/:id; admins may read any valuation.
func (h *ValuationHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	v, err := h.svc.Get(middleware.GetUserID(c), id, middleware.GetRole(c) == domain.RoleAdmin)
	if err != nil {
		respondError(c, err, "could not load valuation")
		return
	}
	c.JSON(http.StatusOK, v)
}

// GET /me/valuations
func (h *ValuationHandler) ListMine(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	list, err := h.svc.ListMine(middleware.GetUserID(c), limit, offset)
	if err != nil {
		respondError(c, err, "could not list valuations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"valuations": list})
}

// GET /valuations/map?city=
func (h *ValuationHandler) PriceMap(c *gin.Context) {
	m, err := h.svc.PriceMap(c.Query("city"))
	if err != nil {
		respondError(c, err, "could not build price map")
		return
	}
	c.JSON(http.StatusOK, m)
}

// POST /valuations/:id/photos (multipart "file")
func (h *ValuationHandler) AddPhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	f, ok := openUpload(c)
	if !ok {
		return
	}
	defer f.Close()
	v, err := h.svc.AddPhoto(c.Request.Context(), middleware.GetUserID(c), id, f)
	if err != nil {
		respondError(c, err, "upload failed")
		return
	}
	c.JSON(http.StatusOK, v)
}

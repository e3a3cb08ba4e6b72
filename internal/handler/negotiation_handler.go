package handler

import (
	"net/http"
	"strconv"

	"bithra/internal/middleware"
	"bithra/internal/models"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
)

type negotiationService interface {
	Open(backerID uint, projectRef string, in service.OpenNegotiationInput) (*service.NegotiationView, bool, error)
	Get(userID, id uint) (*service.NegotiationView, error)
	Messages(userID, id, afterID uint, limit int) (*service.MessagesPage, error)
	Send(userID, id uint, content string) (*models.NegotiationMessage, error)
	Respond(creatorID, id uint, accept bool) (*service.NegotiationView, error)
	ListMine(userID uint, limit, offset int) ([]service.NegotiationView, error)
}

type NegotiationHandler struct {
	svc negotiationService
}

func NewNegotiationHandler(svc negotiationService) *NegotiationHandler {
	return &NegotiationHandler{svc: svc}
}

// Open answers 201 for a new negotiation and 200 with the existing OPEN one.
// POST /projects/:id/negotiations
func (h *NegotiationHandler) Open(c *gin.Context) {
	var req service.OpenNegotiationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	n, created, err := h.svc.Open(middleware.GetUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "could not open negotiation")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, n)
}

// GET /negotiations
func (h *NegotiationHandler) ListMine(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	list, err := h.svc.ListMine(middleware.GetUserID(c), limit, offset)
	if err != nil {
		respondError(c, err, "could not list negotiations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"negotiations": list})
}

// GET /negotiations/:id
func (h *NegotiationHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	n, err := h.svc.Get(middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err, "could not load negotiation")
		return
	}
	c.JSON(http.StatusOK, n)
}

// Messages is polled by the client every poll_interval_seconds with the last id it saw.
// GET /negotiations/:id/messages?after_id=
func (h *NegotiationHandler) Messages(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	afterID, err := strconv.ParseUint(c.DefaultQuery("after_id", "0"), 10, 64)
	if err != nil {
		badRequest(c, "invalid after_id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	page, err := h.svc.Messages(middleware.GetUserID(c), id, uint(afterID), limit)
	if err != nil {
		respondError(c, err, "could not load messages")
		return
	}
	c.JSON(http.StatusOK, page)
}

// POST /negotiations/:id/messages
func (h *NegotiationHandler) Send(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	m, err := h.svc.Send(middleware.GetUserID(c), id, req.Content)
	if err != nil {
		respondError(c, err, "could not send message")
		return
	}
	c.JSON(http.StatusCreated, m)
}

// POST /negotiations/:id/respond {"accept": true}
func (h *NegotiationHandler) Respond(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Accept *bool `json:"accept" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "accept required")
		return
	}
	n, err := h.svc.Respond(middleware.GetUserID(c), id, *req.Accept)
	if err != nil {
		respondError(c, err, "could not respond")
		return
	}
	c.JSON(http.StatusOK, n)
}

package handler

import (
	"context"
	"net/http"
	"strconv"

	"bithra/internal/middleware"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
)

type leaderboardService interface {
	Top(ctx context.Context, board string, limit int) ([]service.LeaderboardEntry, error)
	Me(ctx context.Context, board string, userID uint) (*service.MyRank, error)
}

type LeaderboardHandler struct {
	svc leaderboardService
}

func NewLeaderboardHandler(svc leaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc}
}

// GET /leaderboard/:board?limit=
func (h *LeaderboardHandler) Top(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	board := c.Param("board")
	entries, err := h.svc.Top(c.Request.Context(), board, limit)
	if err != nil {
		respondError(c, err, "could not load leaderboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": board, "entries": entries})
}

// GET /leaderboard/:board/me
func (h *LeaderboardHandler) Me(c *gin.Context) {
	me, err := h.svc.Me(c.Request.Context(), c.Param("board"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "could not load rank")
		return
	}
	c.JSON(http.StatusOK, me)
}

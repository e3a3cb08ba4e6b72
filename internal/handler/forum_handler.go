package handler

import (
	"net/http"

	"bithra/internal/middleware"
	"bithra/internal/models"
	"bithra/internal/repository"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
)

type forumService interface {
	Categories() ([]repository.CategoryWithCount, error)
	Posts(slug string, page, limit int) (*service.PostPage, error)
	Post(id uint) (*service.PostDetail, error)
	CreatePost(authorID uint, in service.CreatePostInput) (*models.ForumPost, error)
	Reply(authorID, postID uint, body string) (*models.ForumReply, error)
	DeletePost(authorID, postID uint) error
	ReportPost(reporterID, postID uint, in service.ReportInput) (*models.ContentReport, error)
}

type ForumHandler struct {
	svc forumService
}

func NewForumHandler(svc forumService) *ForumHandler {
	return &ForumHandler{svc: svc}
}

// GET /forums/categories
func (h *ForumHandler) Categories(c *gin.Context) {
	cats, err := h.svc.Categories()
	if err != nil {
		respondError(c, err, "could not list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

// GET /forums/posts?category=&page=&limit=
func (h *ForumHandler) Posts(c *gin.Context) {
	page, limit := parsePagination(c)
	res, err := h.svc.Posts(c.Query("category"), page, limit)
	if err != nil {
		respondError(c, err, "could not list posts")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /forums/posts/:id
func (h *ForumHandler) Post(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Post(id)
	if err != nil {
		respondError(c, err, "could not load post")
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /forums/posts
func (h *ForumHandler) CreatePost(c *gin.Context) {
	var req service.CreatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.svc.CreatePost(middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err, "could not create post")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": p.ID, "title": p.Title, "category_id": p.CategoryID, "created_at": p.CreatedAt})
}

// POST /forums/posts/:id/replies
func (h *ForumHandler) Reply(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := h.svc.Reply(middleware.GetUserID(c), id, req.Body)
	if err != nil {
		respondError(c, err, "could not reply")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": r.ID, "post_id": r.PostID, "body": r.Body, "created_at": r.CreatedAt})
}

// DELETE /forums/posts/:id
func (h *ForumHandler) DeletePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePost(middleware.GetUserID(c), id); err != nil {
		respondError(c, err, "could not delete post")
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /forums/posts/:id/report
func (h *ForumHandler) Report(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.ReportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := h.svc.ReportPost(middleware.GetUserID(c), id, req)
	if err != nil {
		respondError(c, err, "could not report post")
		return
	}
	c.JSON(http.StatusCreated, r)
}

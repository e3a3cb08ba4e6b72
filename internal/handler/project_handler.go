package handler

import (
	"context"
	"io"
	"net/http"

	"bithra/internal/middleware"
	"bithra/internal/models"
	"bithra/internal/repository"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

type projectService interface {
	Create(creatorID uint, in service.CreateProjectInput) (*service.ProjectView, error)
	Get(ref string) (*service.ProjectView, error)
	List(f repository.ProjectFilter, page, limit int) (*service.ProjectPage, error)
	Back(ctx context.Context, backerID uint, ref string, in service.BackInput) (*service.BackResult, error)
	Close(creatorID uint, ref string) (*service.ProjectView, error)
	UploadCover(ctx context.Context, creatorID uint, ref string, file io.Reader) (string, error)
	ListMine(creatorID uint, page, limit int) (*service.ProjectPage, error)
	ListBackings(backerID uint, limit, offset int) ([]models.Backing, error)
}

type ProjectHandler struct {
	svc projectService
}

func NewProjectHandler(svc projectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// GET /projects?category=&city=&status=&q=&page=&limit=
func (h *ProjectHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	res, err := h.svc.List(repository.ProjectFilter{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Status:   c.Query("status"),
		Search:   c.Query("q"),
	}, page, limit)
	if err != nil {
		respondError(c, err, "could not list projects")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /projects/:id accepts the numeric id or the public UUID.
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondError(c, err, "could not load project")
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err, "could not create project")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// POST /projects/:id/back
func (h *ProjectHandler) Back(c *gin.Context) {
	var req service.BackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.svc.Back(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "could not back project")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /projects/:id/close
func (h *ProjectHandler) Close(c *gin.Context) {
	p, err := h.svc.Close(middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "could not close project")
		return
	}
	c.JSON(http.StatusOK, p)
}

// UploadCover takes a multipart "file" field.
// POST /projects/:id/cover
func (h *ProjectHandler) UploadCover(c *gin.Context) {
	f, ok := openUpload(c)
	if !ok {
		return
	}
	defer f.Close()
	url, err := h.svc.UploadCover(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), f)
	if err != nil {
		respondError(c, err, "upload failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GET /me/projects
func (h *ProjectHandler) ListMine(c *gin.Context) {
	page, limit := parsePagination(c)
	res, err := h.svc.ListMine(middleware.GetUserID(c), page, limit)
	if err != nil {
		respondError(c, err, "could not list projects")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /me/backings
func (h *ProjectHandler) ListBackings(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	list, err := h.svc.ListBackings(middleware.GetUserID(c), limit, offset)
	if err != nil {
		respondError(c, err, "could not list backings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"backings": list})
}

func openUpload(c *gin.Context) (io.ReadCloser, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file required")
		return nil, false
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return nil, false
	}
	f, err := file.Open()
	if err != nil {
		badRequest(c, "could not read file")
		return nil, false
	}
	return f, true
}

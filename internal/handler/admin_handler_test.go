package handler

import (
	"context"
	"net/http"
	"testing"

	"bithra/internal/domain"
	"bithra/internal/models"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminDeps struct {
	completedBy uint
	appraised   int64
	rejectWith  string
	loginRole   string
}

func (f *fakeAdminDeps) Admin(context.Context) (*service.AdminDashboard, error) {
	return &service.AdminDashboard{}, nil
}

func (f *fakeAdminDeps) ListPending(limit, offset int) ([]service.ValuationView, error) {
	return []service.ValuationView{}, nil
}

func (f *fakeAdminDeps) Complete(adminID, id uint, appraised int64) (*service.ValuationView, error) {
	if id == 404 {
		return nil, service.ErrValuationNotFound
	}
	f.completedBy, f.appraised = adminID, appraised
	return &service.ValuationView{}, nil
}

func (f *fakeAdminDeps) Reject(adminID, id uint, reason string) (*service.ValuationView, error) {
	f.rejectWith = reason
	return nil, service.ErrValuationDone
}

func (f *fakeAdminDeps) PendingReports(limit int) ([]models.ContentReport, error) {
	return []models.ContentReport{{ID: 1, Reason: "spam"}}, nil
}

func (f *fakeAdminDeps) Login(email, password string) (*service.AuthResult, error) {
	if password != "correct-horse" {
		return nil, service.ErrInvalidCreds
	}
	return &service.AuthResult{User: &models.User{ID: 1, Email: email, Role: f.loginRole}, AccessToken: "t"}, nil
}

func adminRouter(f *fakeAdminDeps) *gin.Engine {
	h := NewAdminHandler(f, f, f, f)
	r := gin.New()
	r.POST("/admin/login", h.AdminLogin)
	g := r.Group("/admin", asUser(1, domain.RoleAdmin))
	g.GET("/dashboard", h.Dashboard)
	g.GET("/valuations", h.ListValuations)
	g.POST("/valuations/:id/complete", h.CompleteValuation)
	g.POST("/valuations/:id/reject", h.RejectValuation)
	g.GET("/reports", h.ListReports)
	return r
}

func TestAdminLogin_RequiresAdminRole(t *testing.T) {
	f := &fakeAdminDeps{loginRole: domain.RoleUser}
	r := adminRouter(f)
	creds := map[string]string{"email": "a@bithra.sa", "password": "correct-horse"}

	assert.Equal(t, http.StatusForbidden, doJSON(r, http.MethodPost, "/admin/login", creds).Code)

	f.loginRole = domain.RoleAdmin
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/admin/login", creds).Code)

	creds["password"] = "wrong-password"
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodPost, "/admin/login", creds).Code)
}

func TestAdminValuationReview(t *testing.T) {
	f := &fakeAdminDeps{}
	r := adminRouter(f)

	w := doJSON(r, http.MethodPost, "/admin/valuations/3/complete", map[string]int64{"appraised_halalas": 250000000})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(1), f.completedBy)
	assert.Equal(t, int64(250000000), f.appraised)

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/admin/valuations/3/complete", map[string]int64{}).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodPost, "/admin/valuations/404/complete", map[string]int64{"appraised_halalas": 1}).Code)

	w = doJSON(r, http.MethodPost, "/admin/valuations/3/reject", map[string]string{"reason": "blurry deed"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "blurry deed", f.rejectWith)
}

func TestAdminListings(t *testing.T) {
	r := adminRouter(&fakeAdminDeps{})

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/admin/dashboard", nil).Code)

	w := doJSON(r, http.MethodGet, "/admin/valuations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "valuations")

	w = doJSON(r, http.MethodGet, "/admin/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["reports"], 1)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"bithra/internal/auth"
	"bithra/internal/logger"
	"bithra/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrWeakPassword, http.StatusBadRequest},
	{service.ErrInvalidAmount, http.StatusBadRequest},
	{service.ErrInvalidMessage, http.StatusBadRequest},
	{service.ErrSelfReferral, http.StatusBadRequest},
	{service.ErrReferralInvalidInput, http.StatusBadRequest},
	{service.ErrReferralWindowClosed, http.StatusBadRequest},

	{service.ErrInvalidCreds, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},

	{service.ErrOwnProject, http.StatusForbidden},
	{service.ErrNotCreator, http.StatusForbidden},
	{service.ErrNotParticipant, http.StatusForbidden},
	{service.ErrNegotiationExpired, http.StatusForbidden},
	{service.ErrForbidden, http.StatusForbidden},

	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrReferralCodeNotFound, http.StatusNotFound},
	{service.ErrProjectNotFound, http.StatusNotFound},
	{service.ErrPackageNotFound, http.StatusNotFound},
	{service.ErrNegotiationNotFound, http.StatusNotFound},
	{service.ErrUnknownBoard, http.StatusNotFound},
	{service.ErrCategoryNotFound, http.StatusNotFound},
	{service.ErrPostNotFound, http.StatusNotFound},
	{service.ErrValuationNotFound, http.StatusNotFound},
	{service.ErrNotificationNotFound, http.StatusNotFound},
	{gorm.ErrRecordNotFound, http.StatusNotFound},

	{service.ErrEmailExists, http.StatusConflict},
	{service.ErrUsernameExists, http.StatusConflict},
	{service.ErrAlreadyReferred, http.StatusConflict},
	{service.ErrReferredUserActive, http.StatusConflict},
	{service.ErrProjectClosed, http.StatusConflict},
	{service.ErrPackageSoldOut, http.StatusConflict},
	{service.ErrAlreadyReported, http.StatusConflict},
	{service.ErrValuationDone, http.StatusConflict},

	{service.ErrUploadsDisabled, http.StatusServiceUnavailable},
}

func statusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError maps a service error to its status. Unknown errors are logged and
// answered with the generic message.
func respondError(c *gin.Context, err error, generic string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Component("http").WithError(err).WithField("path", c.FullPath()).Error(generic)
		c.JSON(status, gin.H{"error": generic})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func parseLimitOffset(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tutorpaes/tutor-backend/internal/middleware"
	"github.com/tutorpaes/tutor-backend/internal/response"
	"github.com/tutorpaes/tutor-backend/internal/service"
)

// UserHandler serves per-user reporting.
type UserHandler struct {
	statsService *service.StatsService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(statsService *service.StatsService) *UserHandler {
	return &UserHandler{statsService: statsService}
}

// GetStats godoc
// GET /api/v1/users/:id/stats
// SECURITY: callers may only read their own stats.
func (h *UserHandler) GetStats(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	stats, err := h.statsService.UserStats(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

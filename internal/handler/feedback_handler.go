package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tutorpaes/tutor-backend/internal/middleware"
	"github.com/tutorpaes/tutor-backend/internal/response"
	"github.com/tutorpaes/tutor-backend/internal/service"
)

// FeedbackHandler serves on-demand explanations of recorded answers.
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// GetFeedback godoc
// GET /api/v1/ai/feedback/:id
// Answers owned by other users are reported as not found.
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	fb, err := h.feedbackService.Explain(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, fb)
}

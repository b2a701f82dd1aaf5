package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/response"
	"github.com/tutorpaes/tutor-backend/internal/service"
	"github.com/tutorpaes/tutor-backend/internal/validator"
)

// QuestionHandler handles question authoring for administrators.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// CreateQuestion godoc
// POST /api/v1/admin/questions
// Creates a multiple-choice question with exactly the choices A, B, C and D.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	created, err := h.questionService.Create(c.Request.Context(), &req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, created)
}

// ListRecent godoc
// GET /api/v1/admin/questions/recent?limit=
func (h *QuestionHandler) ListRecent(c *gin.Context) {
	limit := service.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"limit": "limit must be an integer"})
			return
		}
		limit = n
	}

	questions, err := h.questionService.Recent(c.Request.Context(), limit)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

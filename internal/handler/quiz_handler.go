package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tutorpaes/tutor-backend/internal/middleware"
	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/response"
	"github.com/tutorpaes/tutor-backend/internal/service"
	"github.com/tutorpaes/tutor-backend/internal/validator"
)

// QuizHandler serves the practice loop: next question and answer submission.
type QuizHandler struct {
	quizService   *service.QuizService
	answerService *service.AnswerService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, answerService *service.AnswerService) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		answerService: answerService,
	}
}

// NextQuestion godoc
// GET /api/v1/quiz/next-question?exam_code=&subject_code=&topic_code=&attempt_id=
// Returns either the next unanswered question or the completion summary.
func (h *QuizHandler) NextQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.NextQuestionRequest
	if fields := validator.BindQuery(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.quizService.NextQuestion(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, result.Payload())
}

// SubmitAnswer godoc
// POST /api/v1/quiz/answer
// Grades an answer. Resubmitting an already graded question returns the
// original result.
// SECURITY: a user_id in the body that differs from the token is rejected
// before anything else, even when the rest of the payload is invalid.
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitAnswerRequest
	fields := validator.Bind(c, &req)
	if req.UserID != nil && *req.UserID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrIDORBlocked)
		return
	}
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.answerService.SubmitAnswer(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

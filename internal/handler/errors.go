package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"
	"github.com/tutorpaes/tutor-backend/internal/response"
	"github.com/tutorpaes/tutor-backend/internal/service"
)

// serviceErrors maps domain errors to their HTTP status and error code.
var serviceErrors = []struct {
	err    error
	status int
	code   response.ErrCode
}{
	{service.ErrForbidden, http.StatusForbidden, response.ErrIDORBlocked},
	{service.ErrNotSeeded, http.StatusBadRequest, response.ErrExamNotSeeded},
	{service.ErrSubjectNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrTopicNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrQuestionNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrAttemptNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrFeedbackNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrUserNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrChoiceNotFound, http.StatusBadRequest, response.ErrInvalidChoice},
	{service.ErrInvalidChoice, http.StatusBadRequest, response.ErrInvalidChoice},
	{service.ErrQuestionTopicMismatch, http.StatusBadRequest, response.ErrQuestionTopicMismatch},
	{service.ErrAttemptMismatch, http.StatusBadRequest, response.ErrAttemptMismatch},
	{service.ErrEmptyAttempt, http.StatusBadRequest, response.ErrEmptyAttempt},
	{service.ErrAttemptCompleted, http.StatusConflict, response.ErrAttemptCompleted},
	{service.ErrInvalidChoices, http.StatusBadRequest, response.ErrInvalidChoices},
	{service.ErrInvalidCorrectChoice, http.StatusBadRequest, response.ErrInvalidCorrectChoice},
	{service.ErrTestQuestion, http.StatusBadRequest, response.ErrTestQuestion},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
}

// failService writes the error response for err. Unknown errors are logged
// and reported as INTERNAL_ERROR.
func failService(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.code)
			return
		}
	}

	zlog.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Request failed")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// queryID parses a positive integer query parameter.
func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id < 1 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{name: name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

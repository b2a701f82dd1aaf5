package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tutorpaes/tutor-backend/internal/response"
	"github.com/tutorpaes/tutor-backend/internal/service"
)

// CatalogHandler serves the public exam/subject/topic tree.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListExams godoc
// GET /api/v1/catalog/exams
// Returns every exam with its subjects.
func (h *CatalogHandler) ListExams(c *gin.Context) {
	exams, err := h.catalogService.ListExams(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// ListSubjects godoc
// GET /api/v1/catalog/subjects?exam_id=
// Returns the subjects of an exam with their topics.
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	examID, ok := queryID(c, "exam_id")
	if !ok {
		return
	}

	subjects, err := h.catalogService.ListSubjects(c.Request.Context(), examID)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// ListTopics godoc
// GET /api/v1/catalog/topics?subject_id=
func (h *CatalogHandler) ListTopics(c *gin.Context) {
	subjectID, ok := queryID(c, "subject_id")
	if !ok {
		return
	}

	topics, err := h.catalogService.ListTopics(c.Request.Context(), subjectID)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"topics": topics})
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/http/response"
	"github.com/yungbote/onboarding-backend/internal/jobs"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/services"
)

type AssessmentHandler struct {
	log               *logger.Logger
	assessmentService services.AssessmentService
	dispatcher        *jobs.Dispatcher
}

func NewAssessmentHandler(assessmentService services.AssessmentService, dispatcher *jobs.Dispatcher, log *logger.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		log:               log.With("handler", "AssessmentHandler"),
		assessmentService: assessmentService,
		dispatcher:        dispatcher,
	}
}

// POST /assessments
// body: { "user_id": "..." }
// Returns 202: the pending row is created now, the scoring run happens
// in the background.
func (ah *AssessmentHandler) Request(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.RespondServiceError(c, apierr.Validationf("invalid_id", "invalid user_id: %v", err))
		return
	}

	a, err := ah.assessmentService.RequestAssessment(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if err := ah.dispatcher.Enqueue(jobs.Job{Type: jobs.TypeAssessmentRequest, EntityID: a.ID}); err != nil {
		ah.log.Error("Failed to enqueue assessment request", "assessment_id", a.ID.String(), "error", err)
		// No queued job means nothing will ever move this row out of
		// pending, so take it back out before reporting the failure.
		if delErr := ah.assessmentService.Delete(c.Request.Context(), a.ID); delErr != nil {
			ah.log.Error("Failed to remove unscheduled assessment", "assessment_id", a.ID.String(), "error", delErr)
		}
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"assessment": a})
}

// GET /assessments/:id
func (ah *AssessmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := ah.assessmentService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assessment": a})
}

// GET /assessments/user/:user_id
func (ah *AssessmentHandler) ListByUser(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	list, err := ah.assessmentService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assessments": list})
}

// GET /assessments/user/:user_id/latest
func (ah *AssessmentHandler) LatestByUser(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	a, err := ah.assessmentService.LatestByUser(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assessment": a})
}

// DELETE /assessments/:id
func (ah *AssessmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ah.assessmentService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseFormID pulls a uuid form field, writing the 400 itself.
func parseFormID(c *gin.Context, field string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.PostForm(field))
	if err != nil {
		response.RespondServiceError(c, apierr.Validationf("invalid_id", "invalid %s: %v", field, err))
		return uuid.Nil, false
	}
	return id, true
}

func errMissingField(name string) error {
	return fmt.Errorf("missing required field %q", name)
}

var errFileTooLarge = fmt.Errorf("uploaded file exceeds the size limit")

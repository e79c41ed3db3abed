package jobs

import (
	"context"
	"fmt"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/repos"
	"github.com/yungbote/onboarding-backend/internal/services"
	"github.com/yungbote/onboarding-backend/internal/types"
)

// AssessmentRequestHandler fills in a pending assessment row by
// running a refresh for it. This handler is the only place the
// "failed" status is ever written.
type AssessmentRequestHandler struct {
	log         *logger.Logger
	assessments repos.AssessmentRepo
	service     services.AssessmentService
}

func NewAssessmentRequestHandler(assessments repos.AssessmentRepo, service services.AssessmentService, log *logger.Logger) *AssessmentRequestHandler {
	return &AssessmentRequestHandler{
		log:         log.With("job", TypeAssessmentRequest),
		assessments: assessments,
		service:     service,
	}
}

func (h *AssessmentRequestHandler) Type() string { return TypeAssessmentRequest }

func (h *AssessmentRequestHandler) Run(ctx context.Context, job Job) error {
	if _, err := h.assessments.GetByID(ctx, nil, job.EntityID); err != nil {
		if apierr.IsNotFound(err) {
			h.log.Error("Assessment not found", "assessment_id", job.EntityID.String())
			return nil
		}
		return err
	}

	if _, err := h.service.Refresh(ctx, job.EntityID); err != nil {
		h.log.Error("Assessment refresh failed", "assessment_id", job.EntityID.String(), "error", err)
		markErr := h.assessments.UpdateFields(ctx, nil, job.EntityID, map[string]any{
			"status":    types.RiskStatusFailed,
			"reasoning": fmt.Sprintf("Error: %s", err.Error()),
		})
		if markErr != nil {
			h.log.Error("Failed to mark assessment failed", "assessment_id", job.EntityID.String(), "error", markErr)
		}
		return nil
	}
	return nil
}

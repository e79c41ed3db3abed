package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/jobs"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/types"
)

func handlerLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development", false, "")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

// fullDispatcher returns an unstarted dispatcher whose single queue
// slot is already taken, so every Enqueue fails.
func fullDispatcher(t *testing.T) *jobs.Dispatcher {
	t.Helper()
	d := jobs.NewDispatcher(1, 1, handlerLogger(t))
	if err := d.Enqueue(jobs.Job{Type: jobs.TypeAssessmentRequest, EntityID: uuid.New()}); err != nil {
		t.Fatalf("fill queue: %v", err)
	}
	return d
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

type stubAssessmentService struct {
	pending *types.Assessment
	deleted []uuid.UUID
}

func (s *stubAssessmentService) RequestAssessment(ctx context.Context, userID uuid.UUID) (*types.Assessment, error) {
	return s.pending, nil
}

func (s *stubAssessmentService) Create(ctx context.Context, userID uuid.UUID) (*types.Assessment, error) {
	return nil, nil
}

func (s *stubAssessmentService) Refresh(ctx context.Context, assessmentID uuid.UUID) (*types.Assessment, error) {
	return nil, nil
}

func (s *stubAssessmentService) Get(ctx context.Context, id uuid.UUID) (*types.Assessment, error) {
	return nil, nil
}

func (s *stubAssessmentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Assessment, error) {
	return nil, nil
}

func (s *stubAssessmentService) LatestByUser(ctx context.Context, userID uuid.UUID) (*types.Assessment, error) {
	return nil, nil
}

func (s *stubAssessmentService) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func requestAssessmentBody(t *testing.T, userID uuid.UUID) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]string{"user_id": userID.String()})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(body)
}

// A full job queue must not leave a pending row behind with a 202: the
// row is removed and the caller gets the queue error.
func TestRequestAssessmentQueueFullRollsBack(t *testing.T) {
	pending := &types.Assessment{ID: uuid.New(), UserID: uuid.New(), Status: types.RiskStatusPending}
	svc := &stubAssessmentService{pending: pending}
	h := NewAssessmentHandler(svc, fullDispatcher(t), handlerLogger(t))

	c, w := testContext(t)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/assessments", requestAssessmentBody(t, pending.UserID))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Request(c)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status: want=502 got=%d body=%s", w.Code, w.Body.String())
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != pending.ID {
		t.Fatalf("pending row not removed: %v", svc.deleted)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Error.Code != "job_queue_full" {
		t.Fatalf("error code: got=%q", envelope.Error.Code)
	}
}

func TestRequestAssessmentAccepted(t *testing.T) {
	pending := &types.Assessment{ID: uuid.New(), UserID: uuid.New(), Status: types.RiskStatusPending}
	svc := &stubAssessmentService{pending: pending}
	h := NewAssessmentHandler(svc, jobs.NewDispatcher(1, 4, handlerLogger(t)), handlerLogger(t))

	c, w := testContext(t)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/assessments", requestAssessmentBody(t, pending.UserID))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Request(c)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status: want=202 got=%d body=%s", w.Code, w.Body.String())
	}
	if len(svc.deleted) != 0 {
		t.Fatalf("accepted request must not delete the row: %v", svc.deleted)
	}
}

package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/platform/redis"
	"github.com/yungbote/onboarding-backend/internal/plugins"
	"github.com/yungbote/onboarding-backend/internal/repos"
	"github.com/yungbote/onboarding-backend/internal/types"
)

// AssessmentService coordinates the full risk-scoring run: user
// profile, processed document data, plugin results, LLM verdict, and
// the persisted assessment plus its ThirdPartyData audit trail.
type AssessmentService interface {
	// RequestAssessment inserts the pending placeholder row the
	// background worker later fills in.
	RequestAssessment(ctx context.Context, userID uuid.UUID) (*types.Assessment, error)
	// Create runs a complete scoring pass and persists a new
	// assessment. All writes commit atomically with the user risk
	// mirror update.
	Create(ctx context.Context, userID uuid.UUID) (*types.Assessment, error)
	// Refresh re-runs scoring for the assessment's owner and folds the
	// result onto the existing row, preserving its id and created_at.
	Refresh(ctx context.Context, assessmentID uuid.UUID) (*types.Assessment, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Assessment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Assessment, error)
	LatestByUser(ctx context.Context, userID uuid.UUID) (*types.Assessment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RiskSummaryCache is the best-effort per-user summary cache in front
// of the latest-assessment read path. *redis.RiskCache satisfies it; a
// nil cache disables caching entirely.
type RiskSummaryCache interface {
	Put(ctx context.Context, summary redis.RiskSummary)
	Get(ctx context.Context, userID uuid.UUID) (*redis.RiskSummary, bool)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type assessmentService struct {
	log       *logger.Logger
	db        *gorm.DB
	users     repos.UserRepo
	documents repos.DocumentRepo
	assess    repos.AssessmentRepo
	tpd       repos.ThirdPartyDataRepo
	sift      repos.SiftScoreRepo
	registry  *plugins.Registry
	risk      RiskAnalysisService
	cache     RiskSummaryCache
}

func NewAssessmentService(
	db *gorm.DB,
	users repos.UserRepo,
	documents repos.DocumentRepo,
	assess repos.AssessmentRepo,
	tpd repos.ThirdPartyDataRepo,
	sift repos.SiftScoreRepo,
	registry *plugins.Registry,
	risk RiskAnalysisService,
	cache RiskSummaryCache,
	log *logger.Logger,
) AssessmentService {
	return &assessmentService{
		log:       log.With("service", "AssessmentService"),
		db:        db,
		users:     users,
		documents: documents,
		assess:    assess,
		tpd:       tpd,
		sift:      sift,
		registry:  registry,
		risk:      risk,
		cache:     cache,
	}
}

func (s *assessmentService) RequestAssessment(ctx context.Context, userID uuid.UUID) (*types.Assessment, error) {
	if _, err := s.users.GetByID(ctx, nil, userID); err != nil {
		return nil, err
	}
	a := &types.Assessment{
		UserID:    userID,
		Score:     0,
		Status:    types.RiskStatusPending,
		Reasoning: "Assessment in progress...",
	}
	if err := s.assess.Create(ctx, nil, a); err != nil {
		return nil, err
	}
	// The pending row is now the user's latest assessment; keep the
	// cache pointing at it so reads do not resurface an older verdict.
	s.mirrorToCache(ctx, a)
	return a, nil
}

func (s *assessmentService) Create(ctx context.Context, userID uuid.UUID) (*types.Assessment, error) {
	var created *types.Assessment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.runScoring(ctx, tx, userID)
		if err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		s.log.Error("Assessment creation failed", "user_id", userID.String(), "error", err)
		return nil, err
	}
	s.mirrorToCache(ctx, created)
	return created, nil
}

// runScoring performs one scoring pass inside tx and persists the new
// assessment, its third-party rows, and the user risk mirror.
func (s *assessmentService) runScoring(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Assessment, error) {
	user, err := s.users.GetByID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.ListProcessedByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	documentsData := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		if !doc.HasUsableData() {
			continue
		}
		documentsData = append(documentsData, map[string]any{
			"document_type": doc.DocumentType,
			"data":          map[string]any(doc.ExtractedData),
		})
	}

	profile, err := s.profilePayload(ctx, tx, user)
	if err != nil {
		return nil, err
	}

	thirdPartyData := s.registry.ExecuteAll(ctx, profile)

	var siftScore *float64
	if siftResult, ok := thirdPartyData["sift"]; ok {
		if raw, ok := siftResult["score"]; ok {
			if v, ok := asFloat(raw); ok {
				siftScore = &v
			}
		}
	}

	verdict := s.risk.Analyze(ctx, profile, documentsData, thirdPartyData)

	a := &types.Assessment{
		UserID:      userID,
		Score:       verdict.Score,
		Status:      verdict.Status,
		Reasoning:   verdict.Reasoning,
		SiftScore:   siftScore,
		LLMResponse: datatypes.JSONMap(verdict.RawResponse),
	}
	if err := s.assess.Create(ctx, tx, a); err != nil {
		return nil, err
	}

	rows := make([]*types.ThirdPartyData, 0, len(thirdPartyData))
	for source, data := range thirdPartyData {
		rows = append(rows, &types.ThirdPartyData{
			AssessmentID: a.ID,
			Source:       source,
			Data:         datatypes.JSONMap(data),
		})
	}
	if err := s.tpd.CreateBatch(ctx, tx, rows); err != nil {
		return nil, err
	}

	if err := s.users.UpdateRiskFields(ctx, tx, userID, verdict.Score, verdict.Status); err != nil {
		return nil, err
	}

	a.ThirdPartyData = make([]types.ThirdPartyData, 0, len(rows))
	for _, r := range rows {
		a.ThirdPartyData = append(a.ThirdPartyData, *r)
	}
	return a, nil
}

// profilePayload flattens the user row into the payload handed to
// plugins and the risk prompt. The latest uploaded Sift score rides
// along under "sift_score" when one exists.
func (s *assessmentService) profilePayload(ctx context.Context, tx *gorm.DB, user *types.User) (map[string]any, error) {
	profile := map[string]any{
		"id":            user.ID.String(),
		"email":         user.Email,
		"full_name":     user.FullName,
		"is_business":   user.IsBusiness,
		"business_name": deref(user.BusinessName),
		"phone_number":  deref(user.PhoneNumber),
		"address":       deref(user.Address),
		"country":       deref(user.Country),
		"tax_id":        deref(user.TaxID),
	}
	latest, err := s.sift.LatestByUser(ctx, tx, user.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		profile["sift_score"] = latest.Score
	}
	return profile, nil
}

func (s *assessmentService) Refresh(ctx context.Context, assessmentID uuid.UUID) (*types.Assessment, error) {
	var refreshed *types.Assessment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.assess.GetByID(ctx, tx, assessmentID)
		if err != nil {
			return err
		}

		fresh, err := s.runScoring(ctx, tx, existing.UserID)
		if err != nil {
			return err
		}

		// Fold the fresh result onto the existing row so its identity
		// and created_at survive, then drop the transient row.
		if err := s.assess.UpdateFields(ctx, tx, existing.ID, map[string]any{
			"score":        fresh.Score,
			"status":       fresh.Status,
			"reasoning":    fresh.Reasoning,
			"sift_score":   fresh.SiftScore,
			"llm_response": fresh.LLMResponse,
		}); err != nil {
			return err
		}

		if err := s.tpd.DeleteByAssessment(ctx, tx, existing.ID); err != nil {
			return err
		}
		rows := make([]*types.ThirdPartyData, 0, len(fresh.ThirdPartyData))
		for _, src := range fresh.ThirdPartyData {
			rows = append(rows, &types.ThirdPartyData{
				AssessmentID: existing.ID,
				Source:       src.Source,
				Data:         src.Data,
			})
		}
		if err := s.tpd.CreateBatch(ctx, tx, rows); err != nil {
			return err
		}

		if err := s.tpd.DeleteByAssessment(ctx, tx, fresh.ID); err != nil {
			return err
		}
		if err := s.assess.Delete(ctx, tx, fresh.ID); err != nil {
			return err
		}

		refreshed, err = s.assess.GetByIDWithData(ctx, tx, existing.ID)
		return err
	})
	if err != nil {
		s.log.Error("Assessment refresh failed", "assessment_id", assessmentID.String(), "error", err)
		return nil, err
	}
	s.mirrorToCache(ctx, refreshed)
	return refreshed, nil
}

func (s *assessmentService) Get(ctx context.Context, id uuid.UUID) (*types.Assessment, error) {
	return s.assess.GetByIDWithData(ctx, nil, id)
}

func (s *assessmentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Assessment, error) {
	if _, err := s.users.GetByID(ctx, nil, userID); err != nil {
		return nil, err
	}
	return s.assess.ListByUser(ctx, nil, userID)
}

func (s *assessmentService) LatestByUser(ctx context.Context, userID uuid.UUID) (*types.Assessment, error) {
	if _, err := s.users.GetByID(ctx, nil, userID); err != nil {
		return nil, err
	}
	// The cache names the latest row; the row itself is still read from
	// Postgres so the payload is never stale, only the routing is.
	if s.cache != nil {
		if summary, ok := s.cache.Get(ctx, userID); ok {
			if id, err := uuid.Parse(summary.AssessmentID); err == nil {
				if a, err := s.assess.GetByIDWithData(ctx, nil, id); err == nil {
					return a, nil
				}
				// Cached row is gone; fall through to the table scan.
			}
		}
	}
	a, err := s.assess.LatestByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	s.mirrorToCache(ctx, a)
	return a, nil
}

func (s *assessmentService) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.assess.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := s.assess.Delete(ctx, nil, id); err != nil {
		return err
	}
	// The cached summary may describe the row just removed.
	if s.cache != nil {
		s.cache.Invalidate(ctx, a.UserID)
	}
	return nil
}

// mirrorToCache writes the committed summary to Redis best-effort.
func (s *assessmentService) mirrorToCache(ctx context.Context, a *types.Assessment) {
	if s.cache == nil || a == nil {
		return
	}
	s.cache.Put(ctx, redis.RiskSummary{
		UserID:       a.UserID.String(),
		AssessmentID: a.ID.String(),
		Score:        a.Score,
		Status:       a.Status,
	})
}

func deref(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

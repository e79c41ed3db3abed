package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/types"
)

type AssessmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, a *types.Assessment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assessment, error)
	GetByIDWithData(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assessment, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Assessment, error)
	LatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Assessment, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return &assessmentRepo{db: db, log: baseLog.With("repo", "AssessmentRepo")}
}

func (ar *assessmentRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ar.db
}

func (ar *assessmentRepo) Create(ctx context.Context, tx *gorm.DB, a *types.Assessment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return ar.handle(tx).WithContext(ctx).Create(a).Error
}

func (ar *assessmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assessment, error) {
	var a types.Assessment
	err := ar.handle(tx).WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFoundf("assessment_not_found", "assessment %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (ar *assessmentRepo) GetByIDWithData(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assessment, error) {
	var a types.Assessment
	err := ar.handle(tx).WithContext(ctx).
		Preload("ThirdPartyData").
		First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFoundf("assessment_not_found", "assessment %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (ar *assessmentRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Assessment, error) {
	var out []*types.Assessment
	if err := ar.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// LatestByUser resolves the "assessment with the latest created_at
// wins" ordering contract. Concurrent runs are not serialized anywhere;
// this read is the only arbiter.
func (ar *assessmentRepo) LatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Assessment, error) {
	var a types.Assessment
	err := ar.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFoundf("assessment_not_found", "no assessments for user %s", userID)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (ar *assessmentRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	res := ar.handle(tx).WithContext(ctx).
		Model(&types.Assessment{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFoundf("assessment_not_found", "assessment %s not found", id)
	}
	return nil
}

func (ar *assessmentRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := ar.handle(tx).WithContext(ctx).Delete(&types.Assessment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFoundf("assessment_not_found", "assessment %s not found", id)
	}
	return nil
}

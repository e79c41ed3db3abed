package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/types"
)

type ThirdPartyDataRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, rows []*types.ThirdPartyData) error
	ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.ThirdPartyData, error)
	DeleteByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) error
}

type thirdPartyDataRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThirdPartyDataRepo(db *gorm.DB, baseLog *logger.Logger) ThirdPartyDataRepo {
	return &thirdPartyDataRepo{db: db, log: baseLog.With("repo", "ThirdPartyDataRepo")}
}

func (tr *thirdPartyDataRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return tr.db
}

func (tr *thirdPartyDataRepo) CreateBatch(ctx context.Context, tx *gorm.DB, rows []*types.ThirdPartyData) error {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
	}
	return tr.handle(tx).WithContext(ctx).Create(&rows).Error
}

func (tr *thirdPartyDataRepo) ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.ThirdPartyData, error) {
	var out []*types.ThirdPartyData
	if err := tr.handle(tx).WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("source ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (tr *thirdPartyDataRepo) DeleteByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) error {
	return tr.handle(tx).WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Delete(&types.ThirdPartyData{}).Error
}

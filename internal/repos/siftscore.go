package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/types"
)

type SiftScoreRepo interface {
	Create(ctx context.Context, tx *gorm.DB, s *types.SiftScore) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SiftScore, error)
	// LatestByUser returns (nil, nil) when the user has no uploaded
	// scores; the sift plugin treats that as "no score provided".
	LatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.SiftScore, error)
}

type siftScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSiftScoreRepo(db *gorm.DB, baseLog *logger.Logger) SiftScoreRepo {
	return &siftScoreRepo{db: db, log: baseLog.With("repo", "SiftScoreRepo")}
}

func (sr *siftScoreRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return sr.db
}

func (sr *siftScoreRepo) Create(ctx context.Context, tx *gorm.DB, s *types.SiftScore) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return sr.handle(tx).WithContext(ctx).Create(s).Error
}

func (sr *siftScoreRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SiftScore, error) {
	var out []*types.SiftScore
	if err := sr.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (sr *siftScoreRepo) LatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.SiftScore, error) {
	var s types.SiftScore
	err := sr.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/types"
)

type DocumentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, doc *types.Document) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Document, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Document, error)
	ListProcessedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Document, error)
	SetProcessingResult(ctx context.Context, tx *gorm.DB, id uuid.UUID, extracted datatypes.JSONMap) error
	ResetProcessing(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	SetReviewVerdict(ctx context.Context, tx *gorm.DB, id uuid.UUID, verified bool, rejectionReason *string) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

func (dr *documentRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return dr.db
}

func (dr *documentRepo) Create(ctx context.Context, tx *gorm.DB, doc *types.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	return dr.handle(tx).WithContext(ctx).Create(doc).Error
}

func (dr *documentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Document, error) {
	var doc types.Document
	err := dr.handle(tx).WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFoundf("document_not_found", "document %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (dr *documentRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Document, error) {
	var docs []*types.Document
	if err := dr.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (dr *documentRepo) ListProcessedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Document, error) {
	var docs []*types.Document
	if err := dr.handle(tx).WithContext(ctx).
		Where("user_id = ? AND is_processed = ?", userID, true).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// SetProcessingResult is the single pipeline write for a processing
// run: extracted data (success or error payload) plus the completion
// flag, committed together.
func (dr *documentRepo) SetProcessingResult(ctx context.Context, tx *gorm.DB, id uuid.UUID, extracted datatypes.JSONMap) error {
	return dr.handle(tx).WithContext(ctx).
		Model(&types.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_processed": true, "extracted_data": extracted}).Error
}

func (dr *documentRepo) ResetProcessing(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := dr.handle(tx).WithContext(ctx).
		Model(&types.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_processed": false, "extracted_data": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFoundf("document_not_found", "document %s not found", id)
	}
	return nil
}

func (dr *documentRepo) SetReviewVerdict(ctx context.Context, tx *gorm.DB, id uuid.UUID, verified bool, rejectionReason *string) error {
	res := dr.handle(tx).WithContext(ctx).
		Model(&types.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_verified": verified, "rejection_reason": rejectionReason})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFoundf("document_not_found", "document %s not found", id)
	}
	return nil
}

func (dr *documentRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := dr.handle(tx).WithContext(ctx).Delete(&types.Document{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFoundf("document_not_found", "document %s not found", id)
	}
	return nil
}

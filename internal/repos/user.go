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

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *types.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.User, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	UpdateRiskFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, score float64, status string) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (ur *userRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ur.db
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return ur.handle(tx).WithContext(ctx).Create(user).Error
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
	var user types.User
	err := ur.handle(tx).WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFoundf("user_not_found", "user %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *userRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.User, int64, error) {
	h := ur.handle(tx).WithContext(ctx)
	var total int64
	if err := h.Model(&types.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []*types.User
	q := h.Order("created_at DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (ur *userRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	res := ur.handle(tx).WithContext(ctx).Model(&types.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFoundf("user_not_found", "user %s not found", id)
	}
	return nil
}

func (ur *userRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := ur.handle(tx).WithContext(ctx).Delete(&types.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFoundf("user_not_found", "user %s not found", id)
	}
	return nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := ur.handle(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) UpdateRiskFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, score float64, status string) error {
	return ur.handle(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"risk_score": score, "risk_status": status}).Error
}

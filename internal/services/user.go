package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/repos"
	"github.com/yungbote/onboarding-backend/internal/types"
)

// UserCreateInput is the profile payload for registration. Pointer
// fields are optional.
type UserCreateInput struct {
	Email        string  `json:"email" binding:"required,email"`
	FullName     string  `json:"full_name" binding:"required"`
	IsBusiness   bool    `json:"is_business"`
	BusinessName *string `json:"business_name"`
	PhoneNumber  *string `json:"phone_number"`
	Address      *string `json:"address"`
	Country      *string `json:"country"`
	TaxID        *string `json:"tax_id"`
}

// UserUpdateInput carries partial profile updates; nil means "leave
// unchanged".
type UserUpdateInput struct {
	FullName     *string `json:"full_name"`
	IsBusiness   *bool   `json:"is_business"`
	BusinessName *string `json:"business_name"`
	PhoneNumber  *string `json:"phone_number"`
	Address      *string `json:"address"`
	Country      *string `json:"country"`
	TaxID        *string `json:"tax_id"`
	IsVerified   *bool   `json:"is_verified"`
}

// SiftScoreInput is one manually uploaded Sift score.
type SiftScoreInput struct {
	Score          float64        `json:"score" binding:"required"`
	RiskFactors    []string       `json:"risk_factors"`
	AdditionalData map[string]any `json:"additional_data"`
}

type UserService interface {
	Create(ctx context.Context, in UserCreateInput) (*types.User, error)
	Get(ctx context.Context, id uuid.UUID) (*types.User, error)
	List(ctx context.Context, limit, offset int) ([]*types.User, int64, error)
	Update(ctx context.Context, id uuid.UUID, in UserUpdateInput) (*types.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddSiftScore(ctx context.Context, userID uuid.UUID, in SiftScoreInput) (*types.SiftScore, error)
	ListSiftScores(ctx context.Context, userID uuid.UUID) ([]*types.SiftScore, error)
}

type userService struct {
	log   *logger.Logger
	users repos.UserRepo
	sift  repos.SiftScoreRepo
}

func NewUserService(users repos.UserRepo, sift repos.SiftScoreRepo, log *logger.Logger) UserService {
	return &userService{
		log:   log.With("service", "UserService"),
		users: users,
		sift:  sift,
	}
}

func (s *userService) Create(ctx context.Context, in UserCreateInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, apierr.Validationf("invalid_email", "email is required")
	}
	exists, err := s.users.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apierr.Validationf("email_taken", "user with this email already exists")
	}

	user := &types.User{
		Email:        email,
		FullName:     in.FullName,
		IsBusiness:   in.IsBusiness,
		BusinessName: in.BusinessName,
		PhoneNumber:  in.PhoneNumber,
		Address:      in.Address,
		Country:      in.Country,
		TaxID:        in.TaxID,
	}
	if user.IsBusiness && (user.BusinessName == nil || *user.BusinessName == "") {
		return nil, apierr.Validationf("missing_business_name", "business users must provide a business name")
	}
	if err := s.users.Create(ctx, nil, user); err != nil {
		return nil, err
	}
	s.log.Info("User created", "user_id", user.ID.String(), "is_business", user.IsBusiness)
	return user, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	return s.users.GetByID(ctx, nil, id)
}

func (s *userService) List(ctx context.Context, limit, offset int) ([]*types.User, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, nil, limit, offset)
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, in UserUpdateInput) (*types.User, error) {
	updates := map[string]any{}
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}
	if in.IsBusiness != nil {
		updates["is_business"] = *in.IsBusiness
	}
	if in.BusinessName != nil {
		updates["business_name"] = *in.BusinessName
	}
	if in.PhoneNumber != nil {
		updates["phone_number"] = *in.PhoneNumber
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.Country != nil {
		updates["country"] = *in.Country
	}
	if in.TaxID != nil {
		updates["tax_id"] = *in.TaxID
	}
	if in.IsVerified != nil {
		updates["is_verified"] = *in.IsVerified
	}
	if len(updates) == 0 {
		return s.users.GetByID(ctx, nil, id)
	}
	if err := s.users.Update(ctx, nil, id, updates); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, nil, id)
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, nil, id)
}

func (s *userService) AddSiftScore(ctx context.Context, userID uuid.UUID, in SiftScoreInput) (*types.SiftScore, error) {
	if in.Score < 0 || in.Score > 100 {
		return nil, apierr.Validationf("invalid_sift_score", "sift score must be between 0 and 100")
	}
	if _, err := s.users.GetByID(ctx, nil, userID); err != nil {
		return nil, err
	}

	row := &types.SiftScore{
		UserID: userID,
		Score:  in.Score,
	}
	if len(in.RiskFactors) > 0 {
		raw, err := json.Marshal(in.RiskFactors)
		if err != nil {
			return nil, err
		}
		row.RiskFactors = datatypes.JSON(raw)
	}
	if len(in.AdditionalData) > 0 {
		row.AdditionalData = datatypes.JSONMap(in.AdditionalData)
	}
	if err := s.sift.Create(ctx, nil, row); err != nil {
		return nil, err
	}
	s.log.Info("Sift score recorded", "user_id", userID.String(), "score", in.Score)
	return row, nil
}

func (s *userService) ListSiftScores(ctx context.Context, userID uuid.UUID) ([]*types.SiftScore, error) {
	if _, err := s.users.GetByID(ctx, nil, userID); err != nil {
		return nil, err
	}
	return s.sift.ListByUser(ctx, nil, userID)
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SiftScore is a user-uploaded fraud score. The sift plugin reads the
// latest row for a user; no live Sift API call is made.
type SiftScore struct {
	ID             uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Score          float64           `gorm:"not null" json:"score"`
	RiskFactors    datatypes.JSON    `gorm:"column:risk_factors;type:jsonb" json:"risk_factors,omitempty"`
	AdditionalData datatypes.JSONMap `gorm:"column:additional_data;type:jsonb" json:"additional_data,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:now();index" json:"created_at"`
}

func (SiftScore) TableName() string { return "sift_scores" }

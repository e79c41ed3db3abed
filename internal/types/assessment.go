package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Assessment is one risk-scoring run. Status moves
// pending -> {low|medium|high} | failed and is terminal after that; a
// refresh replaces the row's content but never its identity.
type Assessment struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Score       float64           `gorm:"not null" json:"score"`
	Status      string            `gorm:"not null" json:"status"`
	Reasoning   string            `gorm:"not null;type:text" json:"reasoning"`
	SiftScore   *float64          `gorm:"column:sift_score" json:"sift_score,omitempty"`
	LLMResponse datatypes.JSONMap `gorm:"column:llm_response;type:jsonb" json:"llm_response,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:now()" json:"updated_at"`

	ThirdPartyData []ThirdPartyData `gorm:"foreignKey:AssessmentID" json:"third_party_data,omitempty"`
}

func (Assessment) TableName() string { return "assessments" }

// ThirdPartyData is one plugin's raw output for one assessment run,
// retained for audit. Replaced wholesale when the assessment refreshes.
type ThirdPartyData struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssessmentID uuid.UUID         `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Source       string            `gorm:"not null" json:"source"`
	Data         datatypes.JSONMap `gorm:"not null;type:jsonb" json:"data"`
	CreatedAt    time.Time         `gorm:"not null;default:now()" json:"created_at"`
}

func (ThirdPartyData) TableName() string { return "third_party_data" }

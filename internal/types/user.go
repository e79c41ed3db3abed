package types

import (
	"time"

	"github.com/google/uuid"
)

// RiskStatus values. "pending" and "failed" are assessment lifecycle
// markers, not risk tiers; only low/medium/high are ever cached on the
// user row.
const (
	RiskStatusPending = "pending"
	RiskStatusLow     = "low"
	RiskStatusMedium  = "medium"
	RiskStatusHigh    = "high"
	RiskStatusFailed  = "failed"
)

// User is an individual (KYC) or business (KYB) going through
// onboarding. RiskScore/RiskStatus mirror the most recent non-failed
// assessment once one exists.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FullName     string    `gorm:"not null;column:full_name" json:"full_name"`
	IsBusiness   bool      `gorm:"not null;default:false;column:is_business" json:"is_business"`
	BusinessName *string   `gorm:"column:business_name" json:"business_name,omitempty"`
	PhoneNumber  *string   `gorm:"column:phone_number" json:"phone_number,omitempty"`
	Address      *string   `gorm:"column:address" json:"address,omitempty"`
	Country      *string   `gorm:"column:country" json:"country,omitempty"`
	TaxID        *string   `gorm:"column:tax_id" json:"tax_id,omitempty"`
	IsVerified   bool      `gorm:"not null;default:false;column:is_verified" json:"is_verified"`
	RiskScore    *float64  `gorm:"column:risk_score" json:"risk_score,omitempty"`
	RiskStatus   *string   `gorm:"column:risk_status" json:"risk_status,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Documents   []Document   `gorm:"foreignKey:UserID" json:"documents,omitempty"`
	Assessments []Assessment `gorm:"foreignKey:UserID" json:"assessments,omitempty"`
	SiftScores  []SiftScore  `gorm:"foreignKey:UserID" json:"sift_scores,omitempty"`
}

func (User) TableName() string { return "users" }

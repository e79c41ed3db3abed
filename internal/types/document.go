package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Known document types. DocumentType is free-form on the wire; these
// constants select the field-extraction instruction, anything else
// falls back to open-ended extraction.
const (
	DocumentTypePassport             = "passport"
	DocumentTypeIDCard               = "id_card"
	DocumentTypeUtilityBill          = "utility_bill"
	DocumentTypeBusinessRegistration = "business_registration"
	DocumentTypeBankStatement        = "bank_statement"
)

// ExtractedDataErrorKey marks an extraction result as unusable. A
// document whose extracted_data carries this key is never fed into risk
// reasoning.
const ExtractedDataErrorKey = "error"

// Document is one uploaded file. IsVerified/RejectionReason belong to
// human review and are independent of the processing pipeline;
// IsProcessed and ExtractedData belong to the pipeline.
type Document struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	DocumentType    string            `gorm:"not null;column:document_type" json:"document_type"`
	FileName        string            `gorm:"not null;column:file_name" json:"file_name"`
	ContentType     string            `gorm:"not null;column:content_type" json:"content_type"`
	BucketKey       string            `gorm:"not null;column:bucket_key" json:"bucket_key"`
	IsVerified      bool              `gorm:"not null;default:false;column:is_verified" json:"is_verified"`
	IsProcessed     bool              `gorm:"not null;default:false;column:is_processed" json:"is_processed"`
	ExtractedData   datatypes.JSONMap `gorm:"column:extracted_data;type:jsonb" json:"extracted_data,omitempty"`
	RejectionReason *string           `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:now()" json:"updated_at"`
}

func (Document) TableName() string { return "documents" }

// HasUsableData reports whether this document's extraction completed
// and produced something risk reasoning may consume.
func (d *Document) HasUsableData() bool {
	if !d.IsProcessed || len(d.ExtractedData) == 0 {
		return false
	}
	_, failed := d.ExtractedData[ExtractedDataErrorKey]
	return !failed
}

package services

import (
	"context"
	"fmt"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/platform/openai"
	"github.com/yungbote/onboarding-backend/internal/types"
)

const fieldExtractionTemperature = 0.1

const fieldExtractionSystem = "You are a document analysis assistant that extracts structured information from documents. Return ONLY valid JSON with the extracted fields."

// FieldExtractionService turns raw document text into a structured
// field map keyed by document type. It never returns an error: any
// model or transport failure is recorded in-band as {"error": message}
// so the document row always reaches a terminal processed state.
type FieldExtractionService interface {
	Extract(ctx context.Context, text string, documentType string) map[string]any
}

type fieldExtractionService struct {
	log *logger.Logger
	llm openai.Client
}

func NewFieldExtractionService(llm openai.Client, log *logger.Logger) FieldExtractionService {
	return &fieldExtractionService{
		log: log.With("service", "FieldExtractionService"),
		llm: llm,
	}
}

func (s *fieldExtractionService) Extract(ctx context.Context, text string, documentType string) map[string]any {
	prompt := ExtractionPrompt(documentType, text)

	result, err := s.llm.GenerateJSON(ctx, fieldExtractionSystem, prompt, fieldExtractionTemperature)
	if err != nil {
		s.log.Error("Structured extraction failed", "document_type", documentType, "error", err)
		return map[string]any{types.ExtractedDataErrorKey: err.Error()}
	}
	return result
}

// ExtractionPrompt builds the per-type extraction prompt. Unknown
// types fall back to a generic all-fields request rather than failing.
func ExtractionPrompt(documentType, text string) string {
	base := fmt.Sprintf("Extract structured information from the following %s. Return a JSON object with the extracted data.\n\nDocument Text:\n%s\n\n", documentType, text)

	switch documentType {
	case types.DocumentTypePassport:
		return base + `Extract and return the following fields in a JSON object:
- full_name: The full name of the passport holder
- passport_number: The passport number
- nationality: The nationality of the holder
- date_of_birth: The date of birth in YYYY-MM-DD format
- place_of_birth: The place of birth
- gender: The gender of the holder
- issue_date: When the passport was issued in YYYY-MM-DD format
- expiry_date: When the passport expires in YYYY-MM-DD format
- issuing_authority: The authority that issued the passport`
	case types.DocumentTypeIDCard:
		return base + `Extract and return the following fields in a JSON object:
- full_name: The full name on the ID card
- id_number: The ID card number
- date_of_birth: The date of birth in YYYY-MM-DD format
- address: The address on the ID card
- issue_date: When the ID was issued in YYYY-MM-DD format
- expiry_date: When the ID expires in YYYY-MM-DD format
- issuing_authority: The authority that issued the ID card`
	case types.DocumentTypeUtilityBill:
		return base + `Extract and return the following fields in a JSON object:
- account_holder: The name of the account holder
- account_number: The account or customer number
- service_provider: The utility company name
- service_type: Type of utility (electricity, water, gas, etc.)
- billing_date: The date of the bill in YYYY-MM-DD format
- due_date: Payment due date in YYYY-MM-DD format
- billing_period: The period covered by the bill
- amount_due: The amount due, as a number
- address: The service address`
	case types.DocumentTypeBusinessRegistration:
		return base + `Extract and return the following fields in a JSON object:
- business_name: The registered name of the business
- registration_number: The business registration number
- business_type: The type of business entity
- registration_date: The date of registration in YYYY-MM-DD format
- registered_address: The registered address of the business
- directors: An array of director names
- business_activity: The described business activity
- registration_authority: The authority that issued the registration`
	case types.DocumentTypeBankStatement:
		return base + `Extract and return the following fields in a JSON object:
- account_holder: The name of the account holder
- account_number: The bank account number
- bank_name: The name of the bank
- statement_period: The period covered by the statement
- opening_balance: The opening balance, as a number
- closing_balance: The closing balance, as a number
- transactions: A summary of transactions (not every transaction)
- address: The account holder's address`
	default:
		return base + `Extract and return all relevant fields you can identify in a JSON object.
Include names, dates, numbers, addresses, and any other important information.`
	}
}

package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/yungbote/onboarding-backend/internal/types"
)

func TestExtractionPromptPerType(t *testing.T) {
	cases := []struct {
		documentType string
		wantField    string
	}{
		{types.DocumentTypePassport, "passport_number"},
		{types.DocumentTypeIDCard, "id_number"},
		{types.DocumentTypeUtilityBill, "service_provider"},
		{types.DocumentTypeBusinessRegistration, "registration_number"},
		{types.DocumentTypeBankStatement, "opening_balance"},
	}
	for _, tc := range cases {
		t.Run(tc.documentType, func(t *testing.T) {
			prompt := ExtractionPrompt(tc.documentType, "some document text")
			if !strings.Contains(prompt, tc.wantField) {
				t.Fatalf("prompt for %s missing field %q", tc.documentType, tc.wantField)
			}
			if !strings.Contains(prompt, "some document text") {
				t.Fatalf("prompt must embed the document text")
			}
		})
	}
}

func TestExtractionPromptUnknownTypeFallsBack(t *testing.T) {
	prompt := ExtractionPrompt("drivers_license", "text")
	if !strings.Contains(prompt, "all relevant fields") {
		t.Fatalf("unknown type must use the generic prompt, got:\n%s", prompt)
	}
}

func TestExtractReturnsModelFields(t *testing.T) {
	llm := &fakeLLM{result: map[string]any{"full_name": "Jane Roe", "passport_number": "X123"}}
	svc := NewFieldExtractionService(llm, serviceLogger(t))

	out := svc.Extract(context.Background(), "scanned text", types.DocumentTypePassport)
	if out["full_name"] != "Jane Roe" {
		t.Fatalf("extracted fields lost: %v", out)
	}
	if llm.lastTemp != 0.1 {
		t.Fatalf("temperature: want=0.1 got=%v", llm.lastTemp)
	}
}

// Extraction failure is terminal state, not an error: the map carries
// the failure under the error key.
func TestExtractFailureIsInBand(t *testing.T) {
	llm := &fakeLLM{err: fmt.Errorf("rate limited")}
	svc := NewFieldExtractionService(llm, serviceLogger(t))

	out := svc.Extract(context.Background(), "text", types.DocumentTypeIDCard)
	if out[types.ExtractedDataErrorKey] != "rate limited" {
		t.Fatalf("error payload: got=%v", out)
	}
}

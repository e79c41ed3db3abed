package plugins

import (
	"context"
	"testing"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development", false, "")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestSiftPluginScoreBands(t *testing.T) {
	p, err := NewSiftPlugin(testLogger(t))
	if err != nil {
		t.Fatalf("NewSiftPlugin: %v", err)
	}

	cases := []struct {
		name       string
		score      float64
		wantScore  float64
		wantFactor string
	}{
		{"very high", 90, 90, "Very high Sift risk score"},
		{"high", 72.5, 72.5, "High Sift risk score"},
		{"medium", 55, 55, "Medium Sift risk score"},
		{"low", 30, 30, "Low Sift risk score"},
		{"very low", 5, 5, "Very low Sift risk score"},
		{"clamped above", 150, 100, "Very high Sift risk score"},
		{"clamped below", -3, 0, "Very low Sift risk score"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := p.Execute(context.Background(), map[string]any{"sift_score": tc.score})
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if got := res["score"].(float64); got != tc.wantScore {
				t.Fatalf("score: want=%v got=%v", tc.wantScore, got)
			}
			if got := res["has_score"].(bool); !got {
				t.Fatalf("has_score: want=true got=false")
			}
			factors := res["risk_factors"].([]any)
			if len(factors) != 1 || factors[0] != tc.wantFactor {
				t.Fatalf("risk_factors: want=[%q] got=%v", tc.wantFactor, factors)
			}
			if !p.ValidateResponse(res) {
				t.Fatalf("ValidateResponse rejected a well-formed result")
			}
		})
	}
}

func TestSiftPluginMissingScore(t *testing.T) {
	p, _ := NewSiftPlugin(testLogger(t))
	res, err := p.Execute(context.Background(), map[string]any{"id": "u1"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res["has_score"].(bool) {
		t.Fatalf("has_score: want=false")
	}
	if res["score"].(float64) != 0 {
		t.Fatalf("score: want=0 got=%v", res["score"])
	}
	factors := res["risk_factors"].([]any)
	if len(factors) != 1 || factors[0] != "No Sift score provided" {
		t.Fatalf("risk_factors: got=%v", factors)
	}
}

func TestSiftPluginInvalidFormat(t *testing.T) {
	p, _ := NewSiftPlugin(testLogger(t))
	res, err := p.Execute(context.Background(), map[string]any{"sift_score": "not a number"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res["has_score"].(bool) {
		t.Fatalf("has_score: want=false")
	}
	factors := res["risk_factors"].([]any)
	if len(factors) != 1 || factors[0] != "Invalid Sift score format" {
		t.Fatalf("risk_factors: got=%v", factors)
	}
}

func TestSiftPluginStringScore(t *testing.T) {
	p, _ := NewSiftPlugin(testLogger(t))
	res, err := p.Execute(context.Background(), map[string]any{"sift_score": "42.5"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res["score"].(float64) != 42.5 {
		t.Fatalf("score: want=42.5 got=%v", res["score"])
	}
}

func TestSiftPluginValidateResponse(t *testing.T) {
	p, _ := NewSiftPlugin(testLogger(t))
	if p.ValidateResponse(nil) {
		t.Fatalf("nil response must be invalid")
	}
	if p.ValidateResponse(map[string]any{"score": 1.0}) {
		t.Fatalf("response without risk_factors must be invalid")
	}
	if !p.ValidateResponse(map[string]any{"score": 1.0, "risk_factors": []any{}}) {
		t.Fatalf("response with score and risk_factors must be valid")
	}
}

package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/types"
)

type fakeLLM struct {
	result     map[string]any
	err        error
	lastSystem string
	lastUser   string
	lastTemp   float64
	calls      int
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, system, user string, temperature float64) (map[string]any, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	f.lastTemp = temperature
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func serviceLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development", false, "")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestClampScore(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-10, 0}, {0, 0}, {50, 50}, {100, 100}, {250, 100},
	}
	for _, tc := range cases {
		if got := ClampScore(tc.in); got != tc.want {
			t.Fatalf("ClampScore(%v): want=%v got=%v", tc.in, tc.want, got)
		}
	}
}

func TestTierForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0, types.RiskStatusLow},
		{33.32, types.RiskStatusLow},
		{33.33, types.RiskStatusMedium},
		{66.66, types.RiskStatusMedium},
		{66.67, types.RiskStatusHigh},
		{100, types.RiskStatusHigh},
	}
	for _, tc := range cases {
		if got := TierForScore(tc.score); got != tc.want {
			t.Fatalf("TierForScore(%v): want=%q got=%q", tc.score, tc.want, got)
		}
	}
}

func TestAnalyzeHappyPath(t *testing.T) {
	llm := &fakeLLM{result: map[string]any{
		"risk_score":  72.0,
		"risk_status": "HIGH",
		"reasoning":   "multiple red flags",
	}}
	svc := NewRiskAnalysisService(llm, serviceLogger(t))

	v := svc.Analyze(context.Background(), map[string]any{"id": "u1"}, nil, nil)
	if v.Score != 72.0 {
		t.Fatalf("score: want=72 got=%v", v.Score)
	}
	if v.Status != types.RiskStatusHigh {
		t.Fatalf("status: want=high got=%q", v.Status)
	}
	if v.Reasoning != "multiple red flags" {
		t.Fatalf("reasoning: got=%q", v.Reasoning)
	}
	if llm.lastTemp != 0.2 {
		t.Fatalf("temperature: want=0.2 got=%v", llm.lastTemp)
	}
}

// An unreachable model never aborts the assessment: the verdict is the
// neutral midpoint with the cause recorded in-band.
func TestAnalyzeFallbackOnLLMError(t *testing.T) {
	llm := &fakeLLM{err: fmt.Errorf("connection refused")}
	svc := NewRiskAnalysisService(llm, serviceLogger(t))

	v := svc.Analyze(context.Background(), map[string]any{"id": "u1"}, nil, nil)
	if v.Score != 50.0 {
		t.Fatalf("score: want=50 got=%v", v.Score)
	}
	if v.Status != types.RiskStatusMedium {
		t.Fatalf("status: want=medium got=%q", v.Status)
	}
	if v.Reasoning != "Error during risk analysis: connection refused" {
		t.Fatalf("reasoning: got=%q", v.Reasoning)
	}
	if v.RawResponse["error"] != "connection refused" {
		t.Fatalf("raw response: got=%v", v.RawResponse)
	}
}

// A risk_score the model returns as prose instead of a number is a
// failed analysis, not a zero score: the verdict must be the neutral
// midpoint rather than tiering the user "low".
func TestAnalyzeUnparsableScoreFallsBackNeutral(t *testing.T) {
	cases := []struct {
		name  string
		score any
	}{
		{"prose string", "unknown"},
		{"range string", "40-60"},
		{"bool", true},
		{"object", map[string]any{"value": 40.0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			llm := &fakeLLM{result: map[string]any{
				"risk_score":  tc.score,
				"risk_status": "low",
				"reasoning":   "looks fine",
			}}
			svc := NewRiskAnalysisService(llm, serviceLogger(t))

			v := svc.Analyze(context.Background(), map[string]any{"id": "u1"}, nil, nil)
			if v.Score != 50.0 {
				t.Fatalf("score: want=50 got=%v", v.Score)
			}
			if v.Status != types.RiskStatusMedium {
				t.Fatalf("status: want=medium got=%q", v.Status)
			}
			if !strings.HasPrefix(v.Reasoning, "Error during risk analysis: ") {
				t.Fatalf("reasoning: got=%q", v.Reasoning)
			}
			if _, ok := v.RawResponse["error"]; !ok {
				t.Fatalf("raw response must record the failure: %v", v.RawResponse)
			}
		})
	}
}

// Numeric strings still parse; a missing risk_score reads as zero, as
// it always has.
func TestAnalyzeScoreCoercion(t *testing.T) {
	cases := []struct {
		name   string
		result map[string]any
		want   float64
	}{
		{"numeric string", map[string]any{"risk_score": "42.5", "risk_status": "medium"}, 42.5},
		{"padded string", map[string]any{"risk_score": " 70 ", "risk_status": "high"}, 70},
		{"absent", map[string]any{"risk_status": "low"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			llm := &fakeLLM{result: tc.result}
			svc := NewRiskAnalysisService(llm, serviceLogger(t))
			v := svc.Analyze(context.Background(), map[string]any{}, nil, nil)
			if v.Score != tc.want {
				t.Fatalf("score: want=%v got=%v", tc.want, v.Score)
			}
		})
	}
}

// A status outside the allowed set is derived from the clamped score.
func TestAnalyzeInvalidStatusDerivedFromScore(t *testing.T) {
	cases := []struct {
		score  any
		status any
		want   string
	}{
		{float64(10), "extreme", types.RiskStatusLow},
		{float64(50), nil, types.RiskStatusMedium},
		{float64(400), "unknown", types.RiskStatusHigh}, // clamped to 100 first
	}
	for _, tc := range cases {
		llm := &fakeLLM{result: map[string]any{"risk_score": tc.score, "risk_status": tc.status}}
		svc := NewRiskAnalysisService(llm, serviceLogger(t))
		v := svc.Analyze(context.Background(), map[string]any{}, nil, nil)
		if v.Status != tc.want {
			t.Fatalf("score=%v status=%v: want=%q got=%q", tc.score, tc.status, tc.want, v.Status)
		}
	}
}

func TestAnalyzeMissingReasoningDefaults(t *testing.T) {
	llm := &fakeLLM{result: map[string]any{"risk_score": 20.0, "risk_status": "low"}}
	svc := NewRiskAnalysisService(llm, serviceLogger(t))
	v := svc.Analyze(context.Background(), map[string]any{}, nil, nil)
	if v.Reasoning != "No reasoning provided" {
		t.Fatalf("reasoning: got=%q", v.Reasoning)
	}
}

func TestAnalyzePromptCarriesAllSections(t *testing.T) {
	llm := &fakeLLM{result: map[string]any{"risk_score": 1.0, "risk_status": "low", "reasoning": "r"}}
	svc := NewRiskAnalysisService(llm, serviceLogger(t))

	svc.Analyze(context.Background(),
		map[string]any{"email": "a@b.c"},
		[]map[string]any{{"document_type": "passport", "data": map[string]any{"full_name": "A"}}},
		map[string]map[string]any{"sift": {"score": 10.0}},
	)

	for _, section := range []string{"## User Information", "## Document Data", "## Third-Party Data", "a@b.c", "passport", "sift"} {
		if !strings.Contains(llm.lastUser, section) {
			t.Fatalf("prompt missing %q", section)
		}
	}
}

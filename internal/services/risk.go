package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/platform/openai"
	"github.com/yungbote/onboarding-backend/internal/types"
)

const riskAnalysisTemperature = 0.2

const riskAnalysisSystem = "You are a fraud and risk analysis expert. Your task is to evaluate the risk level of a user based on their profile information, document data, and third-party data. Provide a detailed analysis and a risk score from 0-100."

// RiskVerdict is the normalized outcome of one risk analysis call.
// RawResponse holds the model's full JSON output (or the in-band error
// payload) for the audit trail.
type RiskVerdict struct {
	Score       float64
	Status      string
	Reasoning   string
	RawResponse map[string]any
}

// RiskAnalysisService produces a risk verdict from the consolidated
// user profile, document fields, and plugin data. Analyze is fail-safe
// to neutral: an unreachable or malformed model yields the medium/50
// verdict with the failure recorded in-band, never an error.
type RiskAnalysisService interface {
	Analyze(ctx context.Context, userData map[string]any, documentsData []map[string]any, thirdPartyData map[string]map[string]any) RiskVerdict
}

type riskAnalysisService struct {
	log *logger.Logger
	llm openai.Client
}

func NewRiskAnalysisService(llm openai.Client, log *logger.Logger) RiskAnalysisService {
	return &riskAnalysisService{
		log: log.With("service", "RiskAnalysisService"),
		llm: llm,
	}
}

func (s *riskAnalysisService) Analyze(ctx context.Context, userData map[string]any, documentsData []map[string]any, thirdPartyData map[string]map[string]any) RiskVerdict {
	prompt, err := riskAnalysisPrompt(userData, documentsData, thirdPartyData)
	if err != nil {
		s.log.Error("Risk analysis prompt build failed", "error", err)
		return neutralVerdict(err)
	}

	result, err := s.llm.GenerateJSON(ctx, riskAnalysisSystem, prompt, riskAnalysisTemperature)
	if err != nil {
		s.log.Error("Risk analysis failed", "error", err)
		return neutralVerdict(err)
	}

	rawScore, err := scoreField(result, "risk_score")
	if err != nil {
		s.log.Error("Risk analysis returned an unusable risk_score", "error", err)
		return neutralVerdict(err)
	}
	score := ClampScore(rawScore)
	status := normalizeStatus(stringField(result, "risk_status"), score)
	reasoning := stringField(result, "reasoning")
	if reasoning == "" {
		reasoning = "No reasoning provided"
	}

	return RiskVerdict{
		Score:       score,
		Status:      status,
		Reasoning:   reasoning,
		RawResponse: result,
	}
}

func neutralVerdict(err error) RiskVerdict {
	return RiskVerdict{
		Score:       50.0,
		Status:      types.RiskStatusMedium,
		Reasoning:   fmt.Sprintf("Error during risk analysis: %s", err.Error()),
		RawResponse: map[string]any{"error": err.Error()},
	}
}

// ClampScore bounds any input into the valid [0, 100] score range.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TierForScore maps a score to its risk tier. The boundaries are
// thirds of the range: below 33.33 is low, below 66.67 is medium,
// everything else is high.
func TierForScore(score float64) string {
	switch {
	case score < 33.33:
		return types.RiskStatusLow
	case score < 66.67:
		return types.RiskStatusMedium
	default:
		return types.RiskStatusHigh
	}
}

// normalizeStatus accepts the model's status when it is one of the
// three allowed values (case-insensitively) and otherwise derives the
// tier from the clamped score.
func normalizeStatus(raw string, score float64) string {
	switch status := strings.ToLower(raw); status {
	case types.RiskStatusLow, types.RiskStatusMedium, types.RiskStatusHigh:
		return status
	default:
		return TierForScore(score)
	}
}

func riskAnalysisPrompt(userData map[string]any, documentsData []map[string]any, thirdPartyData map[string]map[string]any) (string, error) {
	userJSON, err := json.MarshalIndent(userData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal user data: %w", err)
	}
	if documentsData == nil {
		documentsData = []map[string]any{}
	}
	docsJSON, err := json.MarshalIndent(documentsData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal documents data: %w", err)
	}
	if thirdPartyData == nil {
		thirdPartyData = map[string]map[string]any{}
	}
	tpdJSON, err := json.MarshalIndent(thirdPartyData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal third-party data: %w", err)
	}

	return fmt.Sprintf(`Please analyze the following user information for potential fraud and risk assessment.

## Task
1. Analyze the user data, document data, and third-party data
2. Identify any discrepancies, red flags, or suspicious patterns
3. Provide a risk score (0-100, where 0 is no risk and 100 is highest risk)
4. Assign a risk status ("low", "medium", or "high")
5. Provide detailed reasoning for your assessment

## User Information
`+"```json\n%s\n```"+`

## Document Data
`+"```json\n%s\n```"+`

## Third-Party Data
`+"```json\n%s\n```"+`

## Response Format
Return your analysis in the following JSON format:
`+"```json"+`
{
    "risk_score": 0-100,
    "risk_status": "low/medium/high",
    "reasoning": "Detailed explanation of risk assessment",
    "discrepancies": ["List of discrepancies found"],
    "red_flags": ["List of red flags identified"],
    "recommendations": ["Optional recommendations"]
}
`+"```"+`

Your analysis must be thorough, fair, and based solely on the information provided.`, userJSON, docsJSON, tpdJSON), nil
}

// scoreField reads a numeric field that models sometimes return as a
// JSON string. A missing field reads as 0; a value that cannot be
// interpreted as a number is an error, never a silent zero, so the
// caller falls back to the neutral verdict instead of scoring "low".
func scoreField(m map[string]any, key string) (float64, error) {
	switch v := m[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case json.Number:
		return v.Float64()
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%s %q is not a number", key, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%s has unexpected type %T", key, v)
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

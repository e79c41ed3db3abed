package plugins

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// siftPlugin processes a user-supplied Sift fraud score carried in the
// profile payload under "sift_score". It never calls the Sift API;
// scores arrive through manual upload.
type siftPlugin struct {
	log *logger.Logger
}

func NewSiftPlugin(log *logger.Logger) (Plugin, error) {
	return &siftPlugin{log: log.With("plugin", "sift")}, nil
}

func (p *siftPlugin) Name() string        { return "sift" }
func (p *siftPlugin) Description() string { return "Manual Sift score processor" }

func (p *siftPlugin) Execute(ctx context.Context, userData map[string]any) (map[string]any, error) {
	raw, ok := userData["sift_score"]
	if !ok || raw == nil {
		p.log.Warn("No Sift score provided", "user_id", fmt.Sprint(userData["id"]))
		return map[string]any{
			"score":        0.0,
			"risk_factors": []any{"No Sift score provided"},
			"has_score":    false,
		}, nil
	}

	score, err := toFloat(raw)
	if err != nil {
		p.log.Error("Invalid Sift score format", "value", fmt.Sprint(raw))
		return map[string]any{
			"score":        0.0,
			"risk_factors": []any{"Invalid Sift score format"},
			"has_score":    false,
		}, nil
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var factor string
	switch {
	case score > 80:
		factor = "Very high Sift risk score"
	case score > 60:
		factor = "High Sift risk score"
	case score > 40:
		factor = "Medium Sift risk score"
	case score > 20:
		factor = "Low Sift risk score"
	default:
		factor = "Very low Sift risk score"
	}

	return map[string]any{
		"score":        score,
		"risk_factors": []any{factor},
		"has_score":    true,
	}, nil
}

func (p *siftPlugin) ValidateResponse(response map[string]any) bool {
	if response == nil {
		return false
	}
	_, hasScore := response["score"]
	_, hasFactors := response["risk_factors"]
	return hasScore && hasFactors
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("unsupported score type %T", v)
	}
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// RiskCache keeps the latest committed risk summary per user so read
// paths can skip Postgres. It is strictly best-effort: the orchestrator
// writes after commit and ignores failures, and a nil *RiskCache is a
// no-op.
type RiskCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

type RiskSummary struct {
	UserID       string  `json:"user_id"`
	AssessmentID string  `json:"assessment_id"`
	Score        float64 `json:"score"`
	Status       string  `json:"status"`
}

func NewRiskCache(addr string, ttl time.Duration, log *logger.Logger) (*RiskCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RiskCache{
		log: log.With("service", "RiskCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func riskKey(userID uuid.UUID) string {
	return "risk:user:" + userID.String()
}

func (rc *RiskCache) Put(ctx context.Context, summary RiskSummary) {
	if rc == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	userID, err := uuid.Parse(summary.UserID)
	if err != nil {
		return
	}
	if err := rc.rdb.Set(ctx, riskKey(userID), raw, rc.ttl).Err(); err != nil {
		rc.log.Warn("Risk summary cache write failed", "user_id", summary.UserID, "error", err)
	}
}

func (rc *RiskCache) Get(ctx context.Context, userID uuid.UUID) (*RiskSummary, bool) {
	if rc == nil {
		return nil, false
	}
	raw, err := rc.rdb.Get(ctx, riskKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var s RiskSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}

func (rc *RiskCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if rc == nil {
		return
	}
	if err := rc.rdb.Del(ctx, riskKey(userID)).Err(); err != nil {
		rc.log.Warn("Risk summary cache invalidation failed", "user_id", userID.String(), "error", err)
	}
}

func (rc *RiskCache) Close() error {
	if rc == nil {
		return nil
	}
	return rc.rdb.Close()
}

package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/onboarding-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		FullName: "Test User",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, documentType string, extracted datatypes.JSONMap) *types.Document {
	tb.Helper()
	d := &types.Document{
		ID:           uuid.New(),
		UserID:       userID,
		DocumentType: documentType,
		FileName:     fmt.Sprintf("%s.pdf", documentType),
		ContentType:  "application/pdf",
		BucketKey:    fmt.Sprintf("documents/%s/%s/%s.pdf", userID, documentType, documentType),
	}
	if extracted != nil {
		d.IsProcessed = true
		d.ExtractedData = extracted
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return d
}

func SeedAssessment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) *types.Assessment {
	tb.Helper()
	a := &types.Assessment{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    status,
		Reasoning: "seeded",
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assessment: %v", err)
	}
	return a
}

func SeedSiftScore(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, score float64) *types.SiftScore {
	tb.Helper()
	s := &types.SiftScore{
		ID:     uuid.New(),
		UserID: userID,
		Score:  score,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed sift score: %v", err)
	}
	return s
}

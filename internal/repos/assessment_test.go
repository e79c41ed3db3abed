package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/repos/testutil"
	"github.com/yungbote/onboarding-backend/internal/types"
)

// Latest-created_at wins: that read is the only arbiter between
// concurrent assessment runs.
func TestLatestByUserOrderingContract(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	user := testutil.SeedUser(t, ctx, tx, "ordering@example.com")
	repo := NewAssessmentRepo(tx, log)

	older := &types.Assessment{
		UserID:    user.ID,
		Status:    types.RiskStatusLow,
		Reasoning: "older",
		CreatedAt: time.Now().Add(-2 * time.Hour).UTC(),
	}
	newer := &types.Assessment{
		UserID:    user.ID,
		Status:    types.RiskStatusHigh,
		Reasoning: "newer",
		CreatedAt: time.Now().Add(-time.Hour).UTC(),
	}
	for _, a := range []*types.Assessment{older, newer} {
		if err := repo.Create(ctx, tx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	latest, err := repo.LatestByUser(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("LatestByUser: %v", err)
	}
	if latest.ID != newer.ID {
		t.Fatalf("latest: want=%s got=%s", newer.ID, latest.ID)
	}

	list, err := repo.ListByUser(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID {
		t.Fatalf("list ordering: got=%v", list)
	}
}

func TestLatestByUserEmpty(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "no-assessments@example.com")
	repo := NewAssessmentRepo(tx, testutil.Logger(t))

	_, err := repo.LatestByUser(ctx, tx, user.ID)
	if !apierr.IsNotFound(err) {
		t.Fatalf("want not_found, got %v", err)
	}
}

func TestGetByIDWithDataPreloadsRows(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	user := testutil.SeedUser(t, ctx, tx, "preload@example.com")
	a := testutil.SeedAssessment(t, ctx, tx, user.ID, types.RiskStatusLow)

	tpdRepo := NewThirdPartyDataRepo(tx, log)
	rows := []*types.ThirdPartyData{
		{AssessmentID: a.ID, Source: "sift", Data: datatypes.JSONMap{"score": 10.0}},
	}
	if err := tpdRepo.CreateBatch(ctx, tx, rows); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	got, err := NewAssessmentRepo(tx, log).GetByIDWithData(ctx, tx, a.ID)
	if err != nil {
		t.Fatalf("GetByIDWithData: %v", err)
	}
	if len(got.ThirdPartyData) != 1 || got.ThirdPartyData[0].Source != "sift" {
		t.Fatalf("preload: got=%v", got.ThirdPartyData)
	}
}

func TestThirdPartyDataReplaceCycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	user := testutil.SeedUser(t, ctx, tx, "tpd-cycle@example.com")
	a := testutil.SeedAssessment(t, ctx, tx, user.ID, types.RiskStatusLow)

	repo := NewThirdPartyDataRepo(tx, log)
	if err := repo.CreateBatch(ctx, tx, []*types.ThirdPartyData{
		{AssessmentID: a.ID, Source: "sift", Data: datatypes.JSONMap{"stale": true}},
	}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := repo.DeleteByAssessment(ctx, tx, a.ID); err != nil {
		t.Fatalf("DeleteByAssessment: %v", err)
	}
	if err := repo.CreateBatch(ctx, tx, []*types.ThirdPartyData{
		{AssessmentID: a.ID, Source: "sift", Data: datatypes.JSONMap{"fresh": true}},
	}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	rows, err := repo.ListByAssessment(ctx, tx, a.ID)
	if err != nil {
		t.Fatalf("ListByAssessment: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows: want 1, got %d", len(rows))
	}
	if _, stale := rows[0].Data["stale"]; stale {
		t.Fatalf("stale row survived replace cycle")
	}
}

func TestUpdateFieldsUnknownAssessment(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewAssessmentRepo(tx, testutil.Logger(t))
	err := repo.UpdateFields(ctx, tx, uuid.New(), map[string]any{"status": types.RiskStatusFailed})
	if !apierr.IsNotFound(err) {
		t.Fatalf("want not_found, got %v", err)
	}
}

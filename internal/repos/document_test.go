package repos

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/onboarding-backend/internal/repos/testutil"
)

func TestSetProcessingResultAndReset(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	user := testutil.SeedUser(t, ctx, tx, "doc-state@example.com")
	doc := testutil.SeedDocument(t, ctx, tx, user.ID, "passport", nil)
	repo := NewDocumentRepo(tx, log)

	extracted := datatypes.JSONMap{"full_name": "Jane Roe", "passport_number": "X123"}
	if err := repo.SetProcessingResult(ctx, tx, doc.ID, extracted); err != nil {
		t.Fatalf("SetProcessingResult: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsProcessed || got.ExtractedData["full_name"] != "Jane Roe" {
		t.Fatalf("processed state: %+v", got)
	}

	if err := repo.ResetProcessing(ctx, tx, doc.ID); err != nil {
		t.Fatalf("ResetProcessing: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.IsProcessed || len(got.ExtractedData) != 0 {
		t.Fatalf("reset state: %+v", got)
	}
}

// Only processed documents feed an assessment run; unprocessed rows
// stay out of the listing.
func TestListProcessedByUser(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "doc-list@example.com")
	testutil.SeedDocument(t, ctx, tx, user.ID, "passport", datatypes.JSONMap{"full_name": "Jane Roe"})
	testutil.SeedDocument(t, ctx, tx, user.ID, "utility_bill", nil)

	repo := NewDocumentRepo(tx, testutil.Logger(t))
	docs, err := repo.ListProcessedByUser(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("ListProcessedByUser: %v", err)
	}
	if len(docs) != 1 || docs[0].DocumentType != "passport" {
		t.Fatalf("processed listing: got=%v", docs)
	}
}

func TestSetReviewVerdict(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "doc-review@example.com")
	doc := testutil.SeedDocument(t, ctx, tx, user.ID, "passport", nil)
	repo := NewDocumentRepo(tx, testutil.Logger(t))

	reason := "photo mismatch"
	if err := repo.SetReviewVerdict(ctx, tx, doc.ID, false, &reason); err != nil {
		t.Fatalf("SetReviewVerdict: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.IsVerified {
		t.Fatalf("rejected document must not be verified")
	}
	if got.RejectionReason == nil || *got.RejectionReason != reason {
		t.Fatalf("rejection reason: got=%v", got.RejectionReason)
	}

	// Verifying later clears the rejection reason.
	if err := repo.SetReviewVerdict(ctx, tx, doc.ID, true, nil); err != nil {
		t.Fatalf("SetReviewVerdict: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsVerified || got.RejectionReason != nil {
		t.Fatalf("verified state: verified=%v reason=%v", got.IsVerified, got.RejectionReason)
	}
}

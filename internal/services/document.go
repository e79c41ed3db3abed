package services

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/gcp"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/repos"
	"github.com/yungbote/onboarding-backend/internal/types"
)

// allowedExtensions is the upload allowlist. Anything else is rejected
// before any storage or database write happens.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tiff": true,
	".bmp":  true,
}

// DocumentService owns document intake and lifecycle: storage upload,
// row creation, signed access, reprocessing, review verdicts, and
// deletion of both row and object.
type DocumentService interface {
	Upload(ctx context.Context, userID uuid.UUID, documentType, fileName string, content []byte) (*types.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Document, string, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Document, error)
	// Reprocess clears processing state so the pipeline can run again.
	Reprocess(ctx context.Context, id uuid.UUID) (*types.Document, error)
	Review(ctx context.Context, id uuid.UUID, verified bool, rejectionReason *string) (*types.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	log    *logger.Logger
	docs   repos.DocumentRepo
	users  repos.UserRepo
	bucket gcp.BucketService
}

func NewDocumentService(docs repos.DocumentRepo, users repos.UserRepo, bucket gcp.BucketService, log *logger.Logger) DocumentService {
	return &documentService{
		log:    log.With("service", "DocumentService"),
		docs:   docs,
		users:  users,
		bucket: bucket,
	}
}

func (s *documentService) Upload(ctx context.Context, userID uuid.UUID, documentType, fileName string, content []byte) (*types.Document, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return nil, apierr.Validationf("invalid_file_extension", "file extension %q is not allowed", ext)
	}
	if len(content) == 0 {
		return nil, apierr.Validationf("empty_file", "uploaded file is empty")
	}
	if _, err := s.users.GetByID(ctx, nil, userID); err != nil {
		return nil, err
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	normalizedType := strings.ReplaceAll(strings.ToLower(documentType), " ", "_")
	key := fmt.Sprintf("documents/%s/%s/%s", userID, normalizedType, fileName)

	if err := s.bucket.Upload(ctx, key, contentType, content); err != nil {
		return nil, apierr.Externalf("storage_upload_failed", "upload document object: %v", err)
	}

	doc := &types.Document{
		UserID:       userID,
		DocumentType: documentType,
		FileName:     fileName,
		ContentType:  contentType,
		BucketKey:    key,
	}
	if err := s.docs.Create(ctx, nil, doc); err != nil {
		return nil, err
	}
	s.log.Info("Document uploaded", "document_id", doc.ID.String(), "user_id", userID.String(), "document_type", documentType)
	return doc, nil
}

// Get returns the document row plus a short-lived signed download URL.
// A signing failure degrades to an empty URL rather than failing the
// read.
func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*types.Document, string, error) {
	doc, err := s.docs.GetByID(ctx, nil, id)
	if err != nil {
		return nil, "", err
	}
	url, err := s.bucket.SignedDownloadURL(doc.BucketKey)
	if err != nil {
		s.log.Warn("Signed URL generation failed", "document_id", id.String(), "error", err)
		url = ""
	}
	return doc, url, nil
}

func (s *documentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Document, error) {
	if _, err := s.users.GetByID(ctx, nil, userID); err != nil {
		return nil, err
	}
	return s.docs.ListByUser(ctx, nil, userID)
}

func (s *documentService) Reprocess(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	if err := s.docs.ResetProcessing(ctx, nil, id); err != nil {
		return nil, err
	}
	return s.docs.GetByID(ctx, nil, id)
}

func (s *documentService) Review(ctx context.Context, id uuid.UUID, verified bool, rejectionReason *string) (*types.Document, error) {
	if verified && rejectionReason != nil {
		return nil, apierr.Validationf("invalid_review", "a verified document cannot carry a rejection reason")
	}
	if err := s.docs.SetReviewVerdict(ctx, nil, id, verified, rejectionReason); err != nil {
		return nil, err
	}
	return s.docs.GetByID(ctx, nil, id)
}

// Delete removes the row first, then the object best-effort; an
// orphaned object is preferable to a row pointing at nothing.
func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.docs.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, nil, id); err != nil {
		return err
	}
	if err := s.bucket.Delete(ctx, doc.BucketKey); err != nil {
		s.log.Warn("Document object deletion failed", "document_id", id.String(), "key", doc.BucketKey, "error", err)
	}
	return nil
}

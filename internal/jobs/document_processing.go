package jobs

import (
	"context"
	"strings"

	"gorm.io/datatypes"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/gcp"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/repos"
	"github.com/yungbote/onboarding-backend/internal/services"
	"github.com/yungbote/onboarding-backend/internal/types"
)

// DocumentProcessingHandler runs the extraction pipeline for one
// uploaded document: download, OCR by content type, structured field
// extraction, and a single terminal write of the result. Every outcome
// commits with is_processed=true; failures are recorded in-band under
// the "error" key and are not retried.
type DocumentProcessingHandler struct {
	log          *logger.Logger
	docs         repos.DocumentRepo
	bucket       gcp.BucketService
	textExtract  services.TextExtractionService
	fieldExtract services.FieldExtractionService
}

func NewDocumentProcessingHandler(
	docs repos.DocumentRepo,
	bucket gcp.BucketService,
	textExtract services.TextExtractionService,
	fieldExtract services.FieldExtractionService,
	log *logger.Logger,
) *DocumentProcessingHandler {
	return &DocumentProcessingHandler{
		log:          log.With("job", TypeDocumentProcessing),
		docs:         docs,
		bucket:       bucket,
		textExtract:  textExtract,
		fieldExtract: fieldExtract,
	}
}

func (h *DocumentProcessingHandler) Type() string { return TypeDocumentProcessing }

func (h *DocumentProcessingHandler) Run(ctx context.Context, job Job) error {
	doc, err := h.docs.GetByID(ctx, nil, job.EntityID)
	if err != nil {
		if apierr.IsNotFound(err) {
			h.log.Error("Document not found", "document_id", job.EntityID.String())
			return nil
		}
		return err
	}

	content, err := h.bucket.Download(ctx, doc.BucketKey)
	if err != nil {
		h.log.Error("Document download failed", "document_id", doc.ID.String(), "error", err)
		return h.docs.SetProcessingResult(ctx, nil, doc.ID, datatypes.JSONMap{
			types.ExtractedDataErrorKey: err.Error(),
		})
	}

	var text string
	switch {
	case strings.HasPrefix(doc.ContentType, "image/"):
		text = h.textExtract.FromImage(ctx, content)
	case doc.ContentType == "application/pdf":
		text = h.textExtract.FromPDF(ctx, content)
	default:
		h.log.Error("Unsupported file type", "document_id", doc.ID.String(), "content_type", doc.ContentType)
		return h.docs.SetProcessingResult(ctx, nil, doc.ID, datatypes.JSONMap{
			types.ExtractedDataErrorKey: "Unsupported file type",
		})
	}

	extracted := h.fieldExtract.Extract(ctx, text, doc.DocumentType)

	if err := h.docs.SetProcessingResult(ctx, nil, doc.ID, datatypes.JSONMap(extracted)); err != nil {
		return err
	}
	h.log.Info("Document processed", "document_id", doc.ID.String(), "document_type", doc.DocumentType)
	return nil
}

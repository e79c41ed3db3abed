package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/onboarding-backend/internal/http/response"
	"github.com/yungbote/onboarding-backend/internal/jobs"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/services"
)

type DocumentHandler struct {
	log             *logger.Logger
	documentService services.DocumentService
	dispatcher      *jobs.Dispatcher
}

func NewDocumentHandler(documentService services.DocumentService, dispatcher *jobs.Dispatcher, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		log:             log.With("handler", "DocumentHandler"),
		documentService: documentService,
		dispatcher:      dispatcher,
	}
}

// POST /documents/upload (multipart/form-data)
// fields: "file", "user_id", "document_type"
func (dh *DocumentHandler) Upload(c *gin.Context) {
	const maxBytes = 25 << 20

	userID, ok := parseFormID(c, "user_id")
	if !ok {
		return
	}
	documentType := c.PostForm("document_type")
	if documentType == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_document_type", errMissingField("document_type"))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "open_file_failed", err)
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "read_file_failed", err)
		return
	}
	if len(raw) > maxBytes {
		response.RespondError(c, http.StatusBadRequest, "file_too_large", errFileTooLarge)
		return
	}

	doc, err := dh.documentService.Upload(c.Request.Context(), userID, documentType, fh.Filename, raw)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	// The stored document is useful on its own, so a full queue does not
	// undo the upload; the response says whether processing was
	// scheduled so the client knows to hit the reprocess endpoint.
	scheduled := true
	if err := dh.dispatcher.Enqueue(jobs.Job{Type: jobs.TypeDocumentProcessing, EntityID: doc.ID}); err != nil {
		scheduled = false
		dh.log.Error("Failed to enqueue document processing", "document_id", doc.ID.String(), "error", err)
	}

	c.JSON(http.StatusCreated, gin.H{"document": doc, "processing_scheduled": scheduled})
}

// GET /documents/:id
func (dh *DocumentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	doc, url, err := dh.documentService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc, "download_url": url})
}

// GET /documents/user/:user_id
func (dh *DocumentHandler) ListByUser(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	docs, err := dh.documentService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs})
}

// POST /documents/:id/reprocess
func (dh *DocumentHandler) Reprocess(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	doc, err := dh.documentService.Reprocess(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if err := dh.dispatcher.Enqueue(jobs.Job{Type: jobs.TypeDocumentProcessing, EntityID: doc.ID}); err != nil {
		// Reset is idempotent; the client can simply retry.
		dh.log.Error("Failed to enqueue document processing", "document_id", doc.ID.String(), "error", err)
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"document": doc})
}

// POST /documents/:id/verify
// body: { "is_verified": bool, "rejection_reason": "..." }
func (dh *DocumentHandler) Verify(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsVerified      bool    `json:"is_verified"`
		RejectionReason *string `json:"rejection_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	doc, err := dh.documentService.Review(c.Request.Context(), id, req.IsVerified, req.RejectionReason)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

// DELETE /documents/:id
func (dh *DocumentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := dh.documentService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

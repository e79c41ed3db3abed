package services

import (
	"context"
	"strings"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/platform/vision"
)

// TextExtractionService owns the degradation policy over the OCR
// backend: recognition failures become empty text, never errors, so a
// bad scan degrades field extraction instead of aborting the document.
type TextExtractionService interface {
	FromImage(ctx context.Context, img []byte) string
	FromPDF(ctx context.Context, pdf []byte) string
}

type textExtractionService struct {
	log *logger.Logger
	ocr vision.OCRProvider
}

func NewTextExtractionService(ocr vision.OCRProvider, log *logger.Logger) TextExtractionService {
	return &textExtractionService{
		log: log.With("service", "TextExtractionService"),
		ocr: ocr,
	}
}

func (s *textExtractionService) FromImage(ctx context.Context, img []byte) string {
	text, err := s.ocr.ExtractImageText(ctx, img)
	if err != nil {
		s.log.Error("Image OCR failed", "error", err)
		return ""
	}
	return text
}

func (s *textExtractionService) FromPDF(ctx context.Context, pdf []byte) string {
	pages, err := s.ocr.ExtractPDFPageTexts(ctx, pdf)
	if err != nil {
		s.log.Error("PDF OCR failed", "error", err)
		return ""
	}
	return JoinPages(pages)
}

// JoinPages concatenates page texts with a blank-line separator,
// preserving page order. Failed pages arrive as empty strings and keep
// their slot.
func JoinPages(pages []string) string {
	return strings.Join(pages, "\n\n")
}

package vision

import (
	"context"
	"fmt"

	visionapi "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// pdfPageBatchSize is the Vision API limit for inline file annotation.
const pdfPageBatchSize = 5

// OCRProvider turns document bytes into recognized text. Callers own
// the degradation policy (failed image -> empty text, failed page ->
// empty page); this provider reports errors faithfully.
type OCRProvider interface {
	ExtractImageText(ctx context.Context, img []byte) (string, error)
	// ExtractPDFPageTexts returns one entry per page in page order. A
	// page the backend could not read contributes an empty string; only
	// whole-document failures return an error.
	ExtractPDFPageTexts(ctx context.Context, pdf []byte) ([]string, error)
	Close() error
}

type ocrProvider struct {
	log          *logger.Logger
	visionClient *visionapi.ImageAnnotatorClient
}

func NewOCRProvider(credentialsFile string, log *logger.Logger) (OCRProvider, error) {
	serviceLog := log.With("service", "OCRProvider")

	ctx := context.Background()
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	vClient, err := visionapi.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &ocrProvider{log: serviceLog, visionClient: vClient}, nil
}

func (p *ocrProvider) ExtractImageText(ctx context.Context, img []byte) (string, error) {
	resp, err := p.visionClient.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: img},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("annotate image: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", fmt.Errorf("empty annotate response")
	}
	r := resp.Responses[0]
	if r.Error != nil {
		return "", fmt.Errorf("vision error: %s", r.Error.Message)
	}
	if r.FullTextAnnotation == nil {
		return "", nil
	}
	return r.FullTextAnnotation.Text, nil
}

func (p *ocrProvider) ExtractPDFPageTexts(ctx context.Context, pdf []byte) ([]string, error) {
	// Requesting a page past the end is an INVALID_ARGUMENT, so ask
	// for page 1 alone first to learn the total page count.
	first, total, err := p.annotatePDFPages(ctx, pdf, []int32{1})
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, total)
	texts = append(texts, first...)

	for start := 2; start <= total; start += pdfPageBatchSize {
		batch := pageRange(start, total)
		pageTexts, _, err := p.annotatePDFPages(ctx, pdf, batch)
		if err != nil {
			// Whole-batch failure degrades those pages to empty text,
			// preserving page order for the join.
			p.log.Warn("PDF page batch failed", "start_page", start, "error", err)
			pageTexts = make([]string, len(batch))
		}
		texts = append(texts, pageTexts...)
	}
	if total >= 0 && len(texts) > total {
		texts = texts[:total]
	}
	return texts, nil
}

func (p *ocrProvider) annotatePDFPages(ctx context.Context, pdf []byte, pages []int32) ([]string, int, error) {
	resp, err := p.visionClient.BatchAnnotateFiles(ctx, &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{{
			InputConfig: &visionpb.InputConfig{
				Content:  pdf,
				MimeType: "application/pdf",
			},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
			Pages:    pages,
		}},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("annotate file: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, 0, fmt.Errorf("empty annotate file response")
	}
	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, 0, fmt.Errorf("vision error: %s", fileResp.Error.Message)
	}

	out := make([]string, 0, len(fileResp.Responses))
	for _, r := range fileResp.Responses {
		if r.Error != nil || r.FullTextAnnotation == nil {
			out = append(out, "")
			continue
		}
		out = append(out, r.FullTextAnnotation.Text)
	}
	return out, int(fileResp.TotalPages), nil
}

func (p *ocrProvider) Close() error {
	return p.visionClient.Close()
}

func pageRange(start, total int) []int32 {
	pages := make([]int32, 0, pdfPageBatchSize)
	for i := start; i < start+pdfPageBatchSize && i <= total; i++ {
		pages = append(pages, int32(i))
	}
	return pages
}

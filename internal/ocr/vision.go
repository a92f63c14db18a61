package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"ocrfix/internal/logger"
)

// MaxVisionImageBytes is the largest inline image the Vision API accepts.
const MaxVisionImageBytes = 20 * 1024 * 1024

// VisionConfig configures the Google Cloud Vision engine.
type VisionConfig struct {
	// CredentialsJSON holds inline service account credentials (GOOGLE_CREDENTIALS).
	CredentialsJSON string

	// CredentialsFile is a service account key path (GOOGLE_APPLICATION_CREDENTIALS).
	CredentialsFile string

	// Languages is a tesseract language string such as "ind+eng"; it is
	// translated into Vision language hints.
	Languages string
}

// AnnotateFunc sends one batch request to the Vision API.
type AnnotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// Vision implements Extractor with Google Cloud Vision document text detection.
//
// Vision has no page segmentation modes. The mode is validated and then
// ignored, and the text of an unchanged image is reused so that auto-detection
// sends one request per image instead of one per candidate mode.
type Vision struct {
	annotate AnnotateFunc
	hints    []string
	close    func() error
	log      zerolog.Logger

	mu       sync.Mutex
	lastKey  string
	lastText string
}

// NewVision creates a Vision client. Inline credentials win over a key file;
// with neither, application default credentials are used.
func NewVision(ctx context.Context, config VisionConfig) (*Vision, error) {
	const op = "NewVision"

	var opts []option.ClientOption
	detail := "application default credentials"
	switch {
	case config.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(config.CredentialsJSON)))
		detail = "GOOGLE_CREDENTIALS"
	case config.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
		detail = "GOOGLE_APPLICATION_CREDENTIALS"
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, NewOCRError(op, "", ErrMissingCredentials, fmt.Sprintf("%s: %v", detail, err))
	}

	v := NewVisionWithAnnotator(func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return client.BatchAnnotateImages(ctx, req)
	}, config.Languages)
	v.close = client.Close
	return v, nil
}

// NewVisionWithAnnotator creates a Vision engine around an explicit annotate
// function (for testing).
func NewVisionWithAnnotator(annotate AnnotateFunc, languages string) *Vision {
	if languages == "" {
		languages = DefaultLanguages
	}
	return &Vision{
		annotate: annotate,
		hints:    VisionLanguageHints(languages),
		log:      logger.WithComponent("ocr-vision"),
	}
}

// Name implements Extractor.
func (v *Vision) Name() string {
	return "vision"
}

// Available implements Extractor. Credentials are checked when the client is
// created, so this only fails for an engine without a client.
func (v *Vision) Available(ctx context.Context) error {
	if v.annotate == nil {
		return NewOCRError("Available", "", ErrEngineUnavailable, "no Vision client")
	}
	return nil
}

// Extract implements Extractor.
func (v *Vision) Extract(ctx context.Context, imagePath string, mode Mode) (string, error) {
	const op = "Extract"

	if !mode.Valid() {
		return "", NewOCRError(op, imagePath, ErrInvalidMode, mode.String())
	}

	info, err := os.Stat(imagePath)
	if err != nil {
		return "", NewOCRError(op, imagePath, ErrExtractionFailed, err.Error())
	}
	key := fmt.Sprintf("%s|%d|%d", imagePath, info.Size(), info.ModTime().UnixNano())

	v.mu.Lock()
	defer v.mu.Unlock()
	if key == v.lastKey {
		return v.lastText, nil
	}

	content, err := os.ReadFile(imagePath)
	if err != nil {
		return "", NewOCRError(op, imagePath, ErrExtractionFailed, err.Error())
	}
	if len(content) > MaxVisionImageBytes {
		return "", NewOCRError(op, imagePath, ErrExtractionFailed, fmt.Sprintf("image is %d bytes, limit is %d", len(content), MaxVisionImageBytes))
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{LanguageHints: v.hints},
			},
		},
	}

	v.log.Debug().
		Str("image", imagePath).
		Int("bytes", len(content)).
		Strs("hints", v.hints).
		Msg("Calling Vision API")

	resp, err := v.annotate(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", NewOCRError(op, imagePath, ctxErr, "")
		}
		return "", WrapOCRError(op, imagePath, fmt.Errorf("%w: %v", ErrExtractionFailed, err), "Vision API call failed")
	}
	if len(resp.GetResponses()) == 0 {
		return "", NewOCRError(op, imagePath, ErrExtractionFailed, "no response from Vision API")
	}

	page := resp.GetResponses()[0]
	if page.GetError() != nil {
		return "", NewOCRError(op, imagePath, ErrExtractionFailed, "Vision API error: "+page.GetError().GetMessage())
	}

	text := strings.TrimSpace(page.GetFullTextAnnotation().GetText())
	v.lastKey, v.lastText = key, text
	return text, nil
}

// Close releases the Vision client.
func (v *Vision) Close() error {
	if v.close != nil {
		return v.close()
	}
	return nil
}

// visionLanguages maps tesseract language names to Vision language hints.
var visionLanguages = map[string]string{
	"ind":     "id",
	"eng":     "en",
	"msa":     "ms",
	"deu":     "de",
	"fra":     "fr",
	"nld":     "nl",
	"spa":     "es",
	"jpn":     "ja",
	"chi_sim": "zh",
}

// VisionLanguageHints translates "ind+eng" into ["id", "en"]. Unknown names
// are skipped; Vision then detects the language itself.
func VisionLanguageHints(languages string) []string {
	var hints []string
	for _, lang := range strings.Split(languages, "+") {
		if hint, ok := visionLanguages[strings.TrimSpace(lang)]; ok {
			hints = append(hints, hint)
		}
	}
	return hints
}

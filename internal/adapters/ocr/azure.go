// Package ocr adapts the Azure Computer Vision printed-text API to the
// pipeline's TextRecognizer port. PDFs are rendered to an image first; images
// go through an enhancement pass before being sent to the API.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
)

// AzureRecognizer recognizes printed text through the Computer Vision OCR
// endpoint.
type AzureRecognizer struct {
	client *computervision.BaseClient
}

// NewAzureRecognizer creates an AzureRecognizer against the given endpoint.
func NewAzureRecognizer(endpoint, apiKey string) *AzureRecognizer {
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)
	return &AzureRecognizer{client: &client}
}

var _ ports.TextRecognizer = (*AzureRecognizer)(nil)

// RecognizeText runs OCR over the artifact and returns the recognized text in
// reading order. The API reports no quality signal, so Quality is always nil.
func (r *AzureRecognizer) RecognizeText(ctx context.Context, content []byte, mediaType string) (ports.RecognitionResult, error) {
	if mediaType == "application/pdf" {
		rendered, err := renderFirstPage(content)
		if err != nil {
			return ports.RecognitionResult{}, fmt.Errorf("%w: %v", apperrors.ErrOCRUnavailable, err)
		}
		content = rendered
	} else {
		// Enhancement failures are not fatal; OCR the original instead.
		if enhanced, err := enhanceForRecognition(content); err == nil {
			content = enhanced
		}
	}

	reader := io.NopCloser(bytes.NewReader(content))
	result, err := r.client.RecognizePrintedTextInStream(ctx, true, reader, computervision.OcrLanguagesUnk)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return ports.RecognitionResult{}, fmt.Errorf("%w: %v", apperrors.ErrOCRTimeout, err)
		}
		return ports.RecognitionResult{}, fmt.Errorf("%w: %v", apperrors.ErrOCRUnavailable, err)
	}

	return ports.RecognitionResult{Text: assembleText(result)}, nil
}

// assembleText flattens the region/line/word hierarchy into newline-separated
// lines in reading order.
func assembleText(result computervision.OcrResult) string {
	if result.Regions == nil {
		return ""
	}
	var lines []string
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			var words []string
			for _, word := range *line.Words {
				if word.Text != nil {
					words = append(words, *word.Text)
				}
			}
			if len(words) > 0 {
				lines = append(lines, strings.Join(words, " "))
			}
		}
	}
	return strings.Join(lines, "\n")
}

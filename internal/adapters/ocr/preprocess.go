package ocr

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// enhanceForRecognition applies a fixed enhancement chain that makes receipt
// text easier for the OCR engine to read: grayscale, contrast boost, sharpen,
// slight brightening and gamma correction.
func enhanceForRecognition(content []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	img = imaging.AdjustBrightness(img, 10)
	img = imaging.AdjustGamma(img, 1.2)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode enhanced image: %w", err)
	}
	return buf.Bytes(), nil
}

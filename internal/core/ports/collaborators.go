package ports

import "context"

// RecognitionResult is the raw output of a text recognizer.
type RecognitionResult struct {
	Text string
	// Quality is the recognizer-reported signal in [0,100]; nil when the
	// engine reports none.
	Quality *float64
}

// TextRecognizer turns artifact bytes into raw text. Implementations may fail
// or return empty text; callers treat both as a low-confidence result, not a
// fatal error.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, content []byte, mediaType string) (RecognitionResult, error)
}

// ArtifactStore persists original uploaded artifacts. Stored artifacts are
// never deleted while the owning document exists.
type ArtifactStore interface {
	// Save writes content and returns its reference plus the sha256 hex digest.
	Save(content []byte, mediaType string) (ref string, sha256Hex string, err error)
	Read(ref string) ([]byte, error)
}

// ExtractionQueue hands a document off to the asynchronous extraction
// pipeline. Enqueue returns apperrors.ErrExtractionInFlight when a task for
// the same document is already queued or running.
type ExtractionQueue interface {
	Enqueue(documentID string) error
}

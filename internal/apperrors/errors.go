package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnsupportedMediaType indicates an upload with a media type outside the accepted set.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// ErrPayloadTooLarge indicates an upload exceeding the configured size ceiling.
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrOCRUnavailable indicates the text recognizer failed or was unreachable.
var ErrOCRUnavailable = errors.New("ocr unavailable")

// ErrOCRTimeout indicates the text recognizer did not answer within the configured bound.
var ErrOCRTimeout = errors.New("ocr timeout")

// ErrIncompleteDocument indicates a confirmation attempt without the required fields.
var ErrIncompleteDocument = errors.New("incomplete document")

// ErrInvalidStateTransition indicates a lifecycle transition not allowed from the current status.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// ErrDocumentLocked indicates a field edit attempted on a posted or cancelled document.
var ErrDocumentLocked = errors.New("document locked")

// ErrVendorConflict indicates two resolutions raced on the same normalized vendor name.
// Handled internally by re-reading the winner's row; never surfaced to the caller.
var ErrVendorConflict = errors.New("vendor creation conflict")

// ErrExtractionInFlight indicates an extraction task is already running for the document.
var ErrExtractionInFlight = errors.New("extraction already in flight")

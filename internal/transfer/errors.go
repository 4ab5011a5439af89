package transfer

import "errors"

var (
	// ErrMalformedImport aborts an import whose payload is neither a task
	// array nor an export envelope.
	ErrMalformedImport = errors.New("malformed import payload")

	// ErrInvalidImage marks a data URL that is not a base64 encoded image.
	// Import skips such images and keeps the rest of the record.
	ErrInvalidImage = errors.New("invalid image data url")
)

package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// Analysis failures. Only ErrInadmissibleInput ever reaches a caller of the
	// pipeline; the others are absorbed by fallbacks and show up as lower confidence.
	ErrInadmissibleInput  = errors.New("input not admissible")
	ErrModelUnavailable   = errors.New("model unavailable")
	ErrModelNotReady      = errors.New("model not ready")
	ErrMalformedCandidate = errors.New("malformed segmentation candidate")
	ErrEmptyToken         = errors.New("empty token")
)

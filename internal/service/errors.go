package service

import "errors"

var (
	// ErrInvalidInput marks caller mistakes: missing or malformed
	// request fields. Handlers map it to 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks lookups that matched nothing. Distinct from a
	// failed lookup, which comes back as a wrapped store error.
	ErrNotFound = errors.New("not found")

	// ErrImageFetch marks a failure to retrieve the caller-supplied
	// image reference. Attributable to the caller, so handlers map it
	// to 400.
	ErrImageFetch = errors.New("image fetch failed")

	// ErrInference marks a transport-level failure talking to the
	// inference service. Handlers map it to 502.
	ErrInference = errors.New("inference service error")

	// ErrConfiguration marks required external configuration that is
	// absent at request time. Handlers map it to 500.
	ErrConfiguration = errors.New("configuration missing")
)

package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when the provider has no job with the given id
	ErrJobNotFound = errors.New("job not found")

	// ErrFieldMissing is returned by an accessor whose field is absent from the document
	ErrFieldMissing = errors.New("field missing")

	// ErrFieldType is returned by an accessor whose field has an unexpected JSON type
	ErrFieldType = errors.New("unexpected field type")

	// ErrNotLoaded is returned by accessors whose detail document was never fetched
	ErrNotLoaded = errors.New("detail not loaded")
)

// APIError describes a non-2xx response from the provider
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

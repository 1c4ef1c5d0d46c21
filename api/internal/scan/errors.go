package scan

import (
	"errors"

	"sgpa-scan/api/internal/extract"
	"sgpa-scan/api/internal/parse"
)

// Error kinds as reported to clients.
const (
	KindServiceUnavailable = "service_unavailable"
	KindDeclined           = "extraction_declined"
	KindMalformed          = "malformed_response"
	KindBadImage           = "bad_image"
	KindInternal           = "internal"
)

const genericFailure = "Failed to extract grades. Please try again."

// Classify returns the kind of a scan error and the message to show the user.
func Classify(err error) (kind, message string) {
	var de *parse.DeclinedError
	switch {
	case errors.Is(err, extract.ErrServiceUnavailable):
		return KindServiceUnavailable, extract.ServiceUnavailableMessage
	case errors.As(err, &de):
		return KindDeclined, de.Reason
	case errors.Is(err, parse.ErrMalformedResponse):
		return KindMalformed, genericFailure
	case errors.Is(err, extract.ErrEmptyImage):
		return KindBadImage, err.Error()
	default:
		return KindInternal, genericFailure
	}
}

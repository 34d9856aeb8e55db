package shared

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nwmlabs/nwm-api/internal/domain"
	"github.com/nwmlabs/nwm-api/internal/query"
	"github.com/nwmlabs/nwm-api/internal/record"
	"github.com/nwmlabs/nwm-api/internal/store"
)

// Pipeline-stage errors raised before a handler runs.
var (
	// ErrNotAcceptable is raised when the client cannot accept JSON.
	ErrNotAcceptable = errors.New("client does not accept JSON responses")

	// ErrUnsupportedMediaType is raised when a mutating request does not
	// declare a JSON body.
	ErrUnsupportedMediaType = errors.New("request body must be declared as JSON")

	// ErrEmptyBody is raised when an operation requires a body and none
	// was sent.
	ErrEmptyBody = errors.New("a valid JSON document is required")

	// ErrMalformedBody is raised when the body is not UTF-8 JSON.
	ErrMalformedBody = errors.New("could not decode the request body; the JSON was incorrect or not encoded as UTF-8")

	// ErrBodyTooLarge is raised when the body exceeds the configured cap.
	ErrBodyTooLarge = errors.New("request body is too large")

	// ErrInvalidParam is raised when a path parameter fails its pattern.
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrNotImplemented is raised by routes that answer 501 explicitly.
	ErrNotImplemented = errors.New("operation not implemented")
)

// ErrorDocument is the uniform wire shape for every error response.
type ErrorDocument struct {
	Status      int    `json:"status"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Translate maps any internal failure to an HTTP status and wire document.
// Client-input errors carry their message through; server-side faults get a
// generic description so no internal state or query text leaks. Unclassified
// errors surface only their type name and string form.
func Translate(err error) (int, ErrorDocument) {
	switch {
	case errors.Is(err, record.ErrMissingField):
		return doc(http.StatusBadRequest, "Missing required field", err.Error(), "missing_required_field")
	case errors.Is(err, record.ErrUnknownField), errors.Is(err, record.ErrReadOnlyField):
		return doc(http.StatusBadRequest, "Unknown field", err.Error(), "bad_request")
	case errors.Is(err, record.ErrInvalidValue):
		return doc(http.StatusBadRequest, "Invalid value", err.Error(), "invalid_value")
	case errors.Is(err, query.ErrInvalidFilter):
		return doc(http.StatusBadRequest, "Invalid filter", err.Error(), "invalid_filter")
	case errors.Is(err, query.ErrInvalidSort):
		return doc(http.StatusBadRequest, "Invalid sort", err.Error(), "invalid_sort")
	case errors.Is(err, query.ErrInvalidPage):
		return doc(http.StatusBadRequest, "Invalid page", err.Error(), "invalid_page")
	case errors.Is(err, domain.ErrValidation):
		return doc(http.StatusBadRequest, "Invalid user data", err.Error(), "bad_request")
	case errors.Is(err, store.ErrInvalidEntity):
		return doc(http.StatusBadRequest, "Invalid entity data", "The submitted data violates a constraint.", "bad_request")
	case errors.Is(err, ErrInvalidParam):
		return doc(http.StatusBadRequest, "Invalid parameter", err.Error(), "invalid_param")
	case errors.Is(err, ErrEmptyBody):
		return doc(http.StatusBadRequest, "Empty request body", err.Error(), "bad_request")
	case errors.Is(err, ErrMalformedBody):
		return doc(http.StatusBadRequest, "Malformed JSON", err.Error(), "bad_request")
	case errors.Is(err, ErrNotAcceptable):
		return doc(http.StatusNotAcceptable, "Media type not acceptable", err.Error(), "not_acceptable")
	case errors.Is(err, ErrUnsupportedMediaType):
		return doc(http.StatusUnsupportedMediaType, "Unsupported content type", err.Error(), "unsupported_media_type")
	case errors.Is(err, ErrBodyTooLarge):
		return doc(http.StatusRequestEntityTooLarge, "Request body is too large", err.Error(), "too_large")
	case errors.Is(err, store.ErrNotFound):
		return doc(http.StatusNotFound, "Not found", "The requested resource does not exist.", "not_found")
	case errors.Is(err, store.ErrDuplicate):
		return doc(http.StatusConflict, "Already exists", err.Error(), "conflict")
	case errors.Is(err, ErrNotImplemented), errors.Is(err, store.ErrNotImplemented):
		return doc(http.StatusNotImplemented, "Method not implemented",
			"The server does not support the functionality required to fulfill the request.", "not_implemented")
	case errors.Is(err, store.ErrTransactionFailed):
		return doc(http.StatusInternalServerError, "Internal server error",
			"The operation could not be completed.", "transaction_failure")
	case errors.Is(err, record.ErrCorruptStoredValue):
		return doc(http.StatusInternalServerError, "Internal server error",
			"The operation could not be completed.", "corrupt_stored_value")
	default:
		return doc(http.StatusInternalServerError, "Internal server error",
			fmt.Sprintf("%T: %v", err, err), "internal_error")
	}
}

func doc(status int, title, description, code string) (int, ErrorDocument) {
	return status, ErrorDocument{
		Status:      status,
		Title:       title,
		Description: description,
		Code:        code,
	}
}

package errors

import (
	"net/http"
)

// NewError creates a new EngineError with full control over its fields.
// Prefer one of the specialized constructors below.
//
// Example:
//
//	err := NewError(InternalError, "encoder failed", 500, "req_123", nil, encErr)
func NewError(errType ErrorType, message string, code int, requestID string, details map[string]interface{}, err error) *EngineError {
	return &EngineError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Details:   details,
		err:       err,
	}
}

// NewValidationError creates a validation error for bodies whose fields are
// missing or carry the wrong JSON type. It maps to 422 Unprocessable Entity.
//
// Example:
//
//	err := NewValidationError("req_123", "Request validation failed", map[string]interface{}{
//	    "fields": []FieldError{{Field: "age", Code: "required"}},
//	})
func NewValidationError(requestID, message string, validationDetails map[string]interface{}) *EngineError {
	return &EngineError{
		Type:      ValidationError,
		Message:   message,
		Code:      http.StatusUnprocessableEntity,
		RequestID: requestID,
		Details:   validationDetails,
	}
}

// NewBadRequestError creates an error for bodies that are not parseable JSON.
func NewBadRequestError(requestID, message string, err error) *EngineError {
	return &EngineError{
		Type:      BadRequestError,
		Message:   message,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
		err:       err,
	}
}

// NewExtractionError wraps a document parsing failure. The report route writes
// these through WriteDetail rather than WriteError.
func NewExtractionError(requestID string, err error) *EngineError {
	return &EngineError{
		Type:      ExtractionError,
		Message:   "Document could not be processed",
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}

// NewProviderError wraps a failed model call for logging. Clients never see
// it: the text routes answer 200 with the failure text instead.
func NewProviderError(requestID string, message string, err error) *EngineError {
	return &EngineError{
		Type:      ProviderError,
		Message:   message,
		Code:      http.StatusBadGateway,
		RequestID: requestID,
		err:       err,
	}
}

// NewInternalError creates an internal server error for panics and other
// unexpected failures.
func NewInternalError(requestID string, err error) *EngineError {
	return &EngineError{
		Type:      InternalError,
		Message:   "An internal error occurred",
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}

// NewNotFoundError reports a path that no route serves.
func NewNotFoundError(requestID, path string) *EngineError {
	return &EngineError{
		Type:      NotFoundError,
		Message:   "Not found",
		Code:      http.StatusNotFound,
		RequestID: requestID,
		Details: map[string]interface{}{
			"path": path,
		},
	}
}

// NewMethodNotAllowedError reports a known path requested with an unsupported method.
func NewMethodNotAllowedError(requestID, method string) *EngineError {
	return &EngineError{
		Type:      MethodNotAllowedError,
		Message:   "Method not allowed",
		Code:      http.StatusMethodNotAllowed,
		RequestID: requestID,
		Details: map[string]interface{}{
			"method": method,
		},
	}
}

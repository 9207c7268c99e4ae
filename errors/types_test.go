package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNewValidationError(t *testing.T) {
	requestID := "test-456"
	message := "invalid input"
	details := map[string]interface{}{
		"field": "age",
		"error": "required",
	}

	err := NewValidationError(requestID, message, details)

	if err.Type != ValidationError {
		t.Errorf("Expected error type %v, got %v", ValidationError, err.Type)
	}
	if err.Message != message {
		t.Errorf("Expected message %v, got %v", message, err.Message)
	}
	if err.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected code %v, got %v", http.StatusUnprocessableEntity, err.Code)
	}
	if err.RequestID != requestID {
		t.Errorf("Expected requestID %v, got %v", requestID, err.RequestID)
	}
	if err.Details["field"] != details["field"] {
		t.Errorf("Expected details field %v, got %v", details["field"], err.Details["field"])
	}
}

func TestNewBadRequestError(t *testing.T) {
	inner := errors.New("unexpected EOF")
	err := NewBadRequestError("test-1", "Invalid request body", inner)

	if err.Code != http.StatusBadRequest {
		t.Errorf("Expected code %v, got %v", http.StatusBadRequest, err.Code)
	}
	if !errors.Is(err, inner) {
		t.Errorf("Expected wrapped error to be reachable through errors.Is")
	}
}

func TestNewExtractionError(t *testing.T) {
	inner := errors.New("malformed PDF")
	err := NewExtractionError("test-2", inner)

	if err.Type != ExtractionError {
		t.Errorf("Expected error type %v, got %v", ExtractionError, err.Type)
	}
	if err.Code != http.StatusInternalServerError {
		t.Errorf("Expected code %v, got %v", http.StatusInternalServerError, err.Code)
	}
	if err.Unwrap() != inner {
		t.Errorf("Expected inner error %v, got %v", inner, err.Unwrap())
	}
}

func TestNewNotFoundAndMethodErrors(t *testing.T) {
	nf := NewNotFoundError("test-3", "/missing")
	if nf.Code != http.StatusNotFound || nf.Details["path"] != "/missing" {
		t.Errorf("unexpected not found error: %+v", nf)
	}

	mna := NewMethodNotAllowedError("test-4", http.MethodDelete)
	if mna.Code != http.StatusMethodNotAllowed || mna.Details["method"] != http.MethodDelete {
		t.Errorf("unexpected method error: %+v", mna)
	}
}

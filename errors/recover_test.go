package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorHandler(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := ErrorHandler(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", "panic-id")
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/analyze-vitals", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Type != InternalError || resp.RequestID != "panic-id" {
		t.Errorf("unexpected envelope: %+v", resp)
	}

	entries := logs.FilterMessage("handler panicked").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 panic log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["path"]; got != "/analyze-vitals" {
		t.Errorf("path = %v", got)
	}
}

func TestErrorHandlerPassthrough(t *testing.T) {
	handler := ErrorHandler(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusAccepted)
	}
}

func TestErrorHandlerAbort(t *testing.T) {
	handler := ErrorHandler(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	t.Error("expected the abort panic to propagate")
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	Log(logger, NewValidationError("req-1", "Request validation failed", map[string]interface{}{"fields": "age"}))
	Log(logger, NewExtractionError("req-2", errors.New("malformed PDF")))
	Log(logger, errors.New("plain failure"))

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}

	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("validation error logged at %v, want warn", entries[0].Level)
	}
	if got := entries[0].ContextMap()["error_type"]; got != string(ValidationError) {
		t.Errorf("error_type = %v, want %v", got, ValidationError)
	}

	if entries[1].Level != zapcore.ErrorLevel {
		t.Errorf("extraction error logged at %v, want error", entries[1].Level)
	}
	fields := entries[1].ContextMap()
	if fields["request_id"] != "req-2" || fields["cause"] != "malformed PDF" {
		t.Errorf("unexpected extraction fields: %v", fields)
	}

	if entries[2].Message != "unexpected error" {
		t.Errorf("plain error message = %q", entries[2].Message)
	}
}

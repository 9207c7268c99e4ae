// Package handlers implements the five routes of the AI engine. Each text
// route follows the same flow: decode and validate the body, render a prompt,
// ask the model gateway, and answer 200 with the gateway's text. Upstream
// failures are part of that text, never an HTTP error.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/teilomillet/aiengine/errors"
	"github.com/teilomillet/aiengine/server/extract"
	"github.com/teilomillet/aiengine/server/gateway"
	"github.com/teilomillet/aiengine/server/middleware"
	"github.com/teilomillet/aiengine/server/validation"
)

// Handlers holds the dependencies shared by all routes.
type Handlers struct {
	gateway         gateway.Completer
	extractor       extract.Extractor
	logger          *zap.Logger
	port            int
	maxUploadMemory int64
}

// Config carries the settings the handlers need from the service configuration.
type Config struct {
	// Port is reported by the health check.
	Port int

	// MaxUploadMemory bounds the in-memory part of a multipart upload.
	MaxUploadMemory int64
}

// New creates the route handlers.
func New(g gateway.Completer, x extract.Extractor, cfg Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadMemory <= 0 {
		cfg.MaxUploadMemory = 32 << 20
	}
	return &Handlers{
		gateway:         g,
		extractor:       x,
		logger:          logger,
		port:            cfg.Port,
		maxUploadMemory: cfg.MaxUploadMemory,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeRequestError turns a decode or validation failure into the typed
// error envelope: 400 for unparseable bodies, 422 otherwise.
func (h *Handlers) writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var verr *validation.Error
	if !errors.As(err, &verr) {
		h.logger.Error("unexpected decode error", zap.Error(err), zap.String("request_id", requestID))
		errors.WriteError(w, errors.NewInternalError(requestID, err))
		return
	}

	var engineErr *errors.EngineError
	if verr.Status == http.StatusBadRequest {
		engineErr = errors.NewBadRequestError(requestID, verr.Message, verr)
		engineErr.Details = verr.Details()
	} else {
		engineErr = errors.NewValidationError(requestID, verr.Message, verr.Details())
	}

	h.logger.Info("request rejected",
		zap.String("request_id", requestID),
		zap.String("path", r.URL.Path),
		zap.Int("status", engineErr.Code),
		zap.String("reason", verr.Error()),
	)
	errors.WriteError(w, engineErr)
}

func (h *Handlers) logResult(r *http.Request, route string, res gateway.Result) {
	h.logger.Debug("prompt answered",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("route", route),
		zap.String("kind", string(res.Kind)),
		zap.Int("chars", len(res.Text)),
	)
}

package errors

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// ErrorHandler turns a panicking handler into a 500 internal_error envelope.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				requestID := w.Header().Get("X-Request-ID")
				logger.Error("handler panicked",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestID),
					zap.ByteString("stack", debug.Stack()),
				)
				WriteError(w, NewInternalError(requestID, nil))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Log records err at a level chosen by its status: warn for client errors,
// error for everything else. An EngineError contributes its type, request
// ID and wrapped cause.
func Log(logger *zap.Logger, err error) {
	var ee *EngineError
	if !As(err, &ee) {
		logger.Error("unexpected error", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.String("error_type", string(ee.Type)),
		zap.Int("code", ee.Code),
		zap.String("request_id", ee.RequestID),
	}
	if cause := ee.Unwrap(); cause != nil {
		fields = append(fields, zap.NamedError("cause", cause))
	}
	if len(ee.Details) > 0 {
		fields = append(fields, zap.Any("details", ee.Details))
	}

	if ee.Code >= http.StatusBadRequest && ee.Code < http.StatusInternalServerError {
		logger.Warn(ee.Message, fields...)
		return
	}
	logger.Error(ee.Message, fields...)
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/teilomillet/aiengine/errors"
	"github.com/teilomillet/aiengine/server/middleware"
	"github.com/teilomillet/aiengine/server/prompt"
	"github.com/teilomillet/aiengine/server/validation"
)

// FileField is the multipart field carrying the uploaded document.
const FileField = "file"

// SummaryResponse is the body of POST /summarize-report.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// SummarizeReport extracts the uploaded document's text and asks for a
// summary. A document that cannot be read is answered with 500 and a detail
// message; the gateway is not called in that case.
func (h *Handlers) SummarizeReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := r.ParseMultipartForm(h.maxUploadMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			h.writeRequestError(w, r, validation.MissingField(FileField))
			return
		}
		errors.WriteError(w, errors.NewBadRequestError(requestID, "There was an error parsing the body", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FileField)
	if err != nil {
		h.writeRequestError(w, r, validation.MissingField(FileField))
		return
	}
	defer file.Close()

	text, err := h.extractor.Extract(r.Context(), file)
	if err != nil {
		errors.Log(h.logger, errors.NewExtractionError(requestID, err))
		errors.WriteDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Debug("report extracted",
		zap.String("request_id", requestID),
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)

	res := h.gateway.Complete(r.Context(), prompt.ForReport(text))
	h.logResult(r, "summarize-report", res)
	writeJSON(w, http.StatusOK, SummaryResponse{Summary: res.Text})
}

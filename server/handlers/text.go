package handlers

import (
	"net/http"

	"github.com/teilomillet/aiengine/server/prompt"
	"github.com/teilomillet/aiengine/server/validation"
)

// AnalysisResponse is the body of POST /analyze-vitals.
type AnalysisResponse struct {
	Analysis string `json:"analysis"`
}

// SuggestionResponse is the body of POST /generate-treatment and
// POST /suggest-medicines.
type SuggestionResponse struct {
	Suggestion string `json:"suggestion"`
}

func (h *Handlers) AnalyzeVitals(w http.ResponseWriter, r *http.Request) {
	var req validation.VitalsRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	res := h.gateway.Complete(r.Context(), prompt.ForVitals(req.Record()))
	h.logResult(r, "analyze-vitals", res)
	writeJSON(w, http.StatusOK, AnalysisResponse{Analysis: res.Text})
}

func (h *Handlers) GenerateTreatment(w http.ResponseWriter, r *http.Request) {
	var req validation.TreatmentRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	res := h.gateway.Complete(r.Context(), prompt.ForTreatment(req.Record()))
	h.logResult(r, "generate-treatment", res)
	writeJSON(w, http.StatusOK, SuggestionResponse{Suggestion: res.Text})
}

func (h *Handlers) SuggestMedicines(w http.ResponseWriter, r *http.Request) {
	var req validation.MedicineRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	res := h.gateway.Complete(r.Context(), prompt.ForMedicine(req.Record()))
	h.logResult(r, "suggest-medicines", res)
	writeJSON(w, http.StatusOK, SuggestionResponse{Suggestion: res.Text})
}

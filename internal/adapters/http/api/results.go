package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/tatami/internal/domain/model"
)

const maxResultBodyBytes = 1 << 20

// ResultsHandler handles result entry requests.
type ResultsHandler struct {
	deps Dependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps Dependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// resultRequest mirrors the OpenAPI schema for POST /results.
type resultRequest struct {
	SubmissionID string      `json:"submission_id"`
	PhaseID      string      `json:"phase_id"`
	Match        model.Match `json:"match"`
}

func (req resultRequest) validate() error {
	switch {
	case strings.TrimSpace(req.PhaseID) == "":
		return fmt.Errorf("%w: missing phase_id", ErrBadRequest)
	case strings.TrimSpace(req.Match.ID) == "":
		return fmt.Errorf("%w: missing match.id", ErrBadRequest)
	}
	return nil
}

type ackResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id"`
	Duplicate    bool   `json:"duplicate"`
}

// HandlePostResult handles POST /results requests.
func (h *ResultsHandler) HandlePostResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_result"

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxResultBodyBytes))
	dec.DisallowUnknownFields()
	var req resultRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	receipt, err := h.deps.Submit(r.Context(), model.ResultSubmission{
		SubmissionID: req.SubmissionID,
		PhaseID:      req.PhaseID,
		Match:        req.Match,
	})
	if err != nil {
		writeServiceError(r.Context(), w, op, err)
		return
	}

	if receipt.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", SubmissionID: receipt.SubmissionID, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", SubmissionID: receipt.SubmissionID})
}

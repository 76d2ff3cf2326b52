package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/tatami/internal/domain/types"
	"github.com/okian/tatami/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PhasesHandler serves the computed tables of each phase.
type PhasesHandler struct {
	deps Dependencies
}

// NewPhasesHandler creates a new phases handler.
func NewPhasesHandler(deps Dependencies) *PhasesHandler {
	return &PhasesHandler{deps: deps}
}

type phasesResponse struct {
	Phases []types.PhaseSummary `json:"phases"`
}

// HandleList handles GET /phases requests.
func (h *PhasesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, phasesResponse{Phases: h.deps.Phases(r.Context())})
}

// HandleRanking handles GET /phases/{phaseID}/ranking requests.
func (h *PhasesHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.deps.Ranking(r.Context(), chi.URLParam(r, "phaseID"))
	if err != nil {
		writeServiceError(r.Context(), w, "api.ranking", err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

// HandleStandings handles GET /phases/{phaseID}/standings requests.
func (h *PhasesHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.deps.Standings(r.Context(), chi.URLParam(r, "phaseID"))
	if err != nil {
		writeServiceError(r.Context(), w, "api.standings", err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

// HandleRounds handles GET /phases/{phaseID}/rounds requests.
func (h *PhasesHandler) HandleRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.deps.Rounds(r.Context(), chi.URLParam(r, "phaseID"))
	if err != nil {
		writeServiceError(r.Context(), w, "api.rounds", err)
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

// HandleTeams handles GET /phases/{phaseID}/teams requests.
func (h *PhasesHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.deps.Teams(r.Context(), chi.URLParam(r, "phaseID"))
	if err != nil {
		writeServiceError(r.Context(), w, "api.teams", err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandleRankingXLSX handles GET /phases/{phaseID}/ranking.xlsx requests.
func (h *PhasesHandler) HandleRankingXLSX(w http.ResponseWriter, r *http.Request) {
	const op = "api.ranking_xlsx"
	ctx := r.Context()
	phaseID := chi.URLParam(r, "phaseID")

	ranking, err := h.deps.Ranking(ctx, phaseID)
	if err != nil {
		writeServiceError(ctx, w, op, err)
		return
	}
	// Both sheets come from one computation.
	teams := ranking.TeamsOf()

	var buf bytes.Buffer
	if err := export.WriteRanking(&buf, ranking, &teams); err != nil {
		writeServiceError(ctx, w, op, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", phaseID+"-ranking.xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

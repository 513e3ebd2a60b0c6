package api

import (
	"net/http"
	"time"

	"github.com/okian/birdiecount/internal/domain/model"
	"github.com/okian/birdiecount/internal/domain/params"
)

// scoreResponse is the board as a display renders it. Error and Idle
// report zero counts.
type scoreResponse struct {
	State         string       `json:"state"`
	Birdies       int          `json:"birdies"`
	Eagles        int          `json:"eagles"`
	TotalDeployed int          `json:"total_deployed"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Message       string       `json:"message"`
	Params        model.Params `json:"params"`
}

func newScoreResponse(st model.State, p model.Params) scoreResponse {
	shown := st.Displayed()
	return scoreResponse{
		State:         st.Kind.String(),
		Birdies:       shown.Birdies,
		Eagles:        shown.Eagles,
		TotalDeployed: shown.TotalDeployed(),
		UpdatedAt:     st.UpdatedAt,
		Message:       st.Message,
		Params:        p,
	}
}

// ScoreHandler serves the published board.
type ScoreHandler struct {
	deps Dependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandleGetScore handles GET /api/score. Any of event, round, ea or bi in
// the query switches the board to those params first, the way navigating a
// display to a new URL would.
func (h *ScoreHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	if src := params.FromQuery(r.URL.Query()); params.Present(src) {
		h.deps.Apply(r.Context(), params.Resolve(src))
	}
	writeJSON(w, http.StatusOK, newScoreResponse(h.deps.State(), h.deps.Params()))
}

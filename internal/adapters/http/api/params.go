package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/birdiecount/internal/domain/model"
	"github.com/okian/birdiecount/internal/domain/params"
)

const maxParamsBody = 4 << 10

// paramsRequest carries raw inputs; absent fields stay nil.
type paramsRequest struct {
	Event  *string `json:"event"`
	Round  *string `json:"round"`
	Eagle  *string `json:"ea"`
	Birdie *string `json:"bi"`
}

func (p paramsRequest) source() params.Source {
	raw := map[string]string{}
	for key, v := range map[string]*string{
		params.KeyEvent:  p.Event,
		params.KeyRound:  p.Round,
		params.KeyEagle:  p.Eagle,
		params.KeyBirdie: p.Birdie,
	} {
		if v != nil {
			raw[key] = *v
		}
	}
	return params.FromMap(raw)
}

type paramsResponse struct {
	Params  model.Params `json:"params"`
	Query   string       `json:"query"`
	Changed bool         `json:"changed"`
}

// ParamsHandler reads and replaces the board params.
type ParamsHandler struct {
	deps Dependencies
}

// NewParamsHandler creates a new params handler.
func NewParamsHandler(deps Dependencies) *ParamsHandler {
	return &ParamsHandler{deps: deps}
}

// HandleGetParams handles GET /api/params.
func (h *ParamsHandler) HandleGetParams(w http.ResponseWriter, _ *http.Request) {
	p := h.deps.Params()
	writeJSON(w, http.StatusOK, paramsResponse{Params: p, Query: params.Encode(p).Encode()})
}

// HandlePutParams handles PUT /api/params. The body replaces every param;
// omitted fields become absent.
func (h *ParamsHandler) HandlePutParams(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_params"

	var req paramsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxParamsBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	p := params.Resolve(req.source())
	changed := h.deps.Apply(r.Context(), p)
	writeJSON(w, http.StatusOK, paramsResponse{Params: p, Query: params.Encode(p).Encode(), Changed: changed})
}

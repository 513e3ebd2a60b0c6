package fakefeed

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/birdiecount/pkg/logger"
)

// Handler serves GET /Event/{event}/Round/{round}.
type Handler struct {
	gen    *Generator
	cfg    Config
	router chi.Router
	log    logger.Logger

	mu    sync.Mutex
	dice  *gofakeit.Faker
	count int
}

// NewHandler creates a Handler for cfg.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		gen:  NewGenerator(cfg),
		cfg:  cfg,
		log:  logger.Get().Named("fakefeed"),
		dice: gofakeit.New(uint64(cfg.Seed)), //nolint:gosec // seed bits only
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/Event/{event}/Round/{round}", h.serveRound)
	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Requests returns the number of round requests served, failed ones included.
func (h *Handler) Requests() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

func (h *Handler) serveRound(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event")
	roundID := chi.URLParam(r, "round")

	if h.shouldFail() {
		h.log.Info(r.Context(), "injected failure",
			logger.String("event", eventID), logger.String("round", roundID))
		http.Error(w, "upstream unavailable", http.StatusInternalServerError)
		return
	}

	round := h.gen.Round(eventID, roundID)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(round); err != nil {
		h.log.Error(r.Context(), "encode round", logger.Error(err))
		return
	}
	h.log.Debug(r.Context(), "served round",
		logger.String("event", eventID),
		logger.String("round", roundID),
		logger.Int("players", len(round.Players)))
}

func (h *Handler) shouldFail() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	if h.cfg.FailRate <= 0 {
		return false
	}
	return h.dice.Float64() < h.cfg.FailRate
}

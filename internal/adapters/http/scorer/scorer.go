// Package scorer exposes the reference scoring model over HTTP with the same
// wire contract the recommendation gateway expects from the real service.
package scorer

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/scoring"
	"github.com/okian/canteen/pkg/logger"
	"github.com/okian/canteen/pkg/metrics"
)

const maxBodyBytes = 4 << 20

// Recommender ranks foods for one request.
type Recommender interface {
	Recommend(ctx context.Context, req scoring.Request) ([]model.Recommendation, error)
}

// Handler serves POST /recommend.
type Handler struct {
	model Recommender
	log   logger.Logger
}

// NewHandler creates a scoring handler around model.
func NewHandler(model Recommender) *Handler {
	return &Handler{model: model, log: logger.Get().Named("scorer")}
}

// Register attaches the scorer routes to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc(scoring.RecommendPath, h.HandleRecommend)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// HandleRecommend decodes a scoring request and answers with
// {"recommendations": [...]}.
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	defer func() {
		code := strconv.Itoa(status)
		metrics.RecordHTTPRequest("recommend", r.Method, code)
		metrics.RecordHTTPRequestDuration("recommend", r.Method, code, float64(time.Since(start).Microseconds())/1000)
	}()

	if r.Method != http.MethodPost {
		status = http.StatusMethodNotAllowed
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(status), status)
		return
	}

	var req scoring.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		status = http.StatusBadRequest
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	recs, err := h.model.Recommend(r.Context(), req)
	if err != nil {
		status = http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		h.log.Error(r.Context(), "scoring failed", logger.Error(err))
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	h.log.Debug(r.Context(), "scored",
		logger.Int("foods", len(req.AvailableFoods)),
		logger.Int("recent", len(req.RecentOrders)),
		logger.Int("results", len(recs)),
	)
	writeJSON(w, status, scoring.Response{Recommendations: recs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

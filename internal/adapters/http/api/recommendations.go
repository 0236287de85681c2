package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/canteen/internal/domain/types"
)

// RecommendationDependencies defines the read paths of the engine. Both never
// fail; an unknown user or cohort yields a guest or empty result.
type RecommendationDependencies interface {
	Recommendations(ctx context.Context, userID string) types.Result
	Trending(ctx context.Context, hostelBlock string) types.Result
}

// RecommendationHandler handles recommendation and trending requests.
type RecommendationHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(deps RecommendationDependencies) *RecommendationHandler {
	return &RecommendationHandler{deps: deps}
}

type recommendationRequest struct {
	UserID string `json:"userId"`
}

// HandleRecommendations handles POST /api/recommendations {userId} and
// GET /api/recommendations?userId=.
func (h *RecommendationHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations"
	var userID string
	switch r.Method {
	case http.MethodGet:
		userID = r.URL.Query().Get("userId")
	case http.MethodPost:
		var req recommendationRequest
		// An empty body is a guest asking.
		if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		userID = req.UserID
	default:
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Recommendations(r.Context(), strings.TrimSpace(userID)))
}

// HandleTrending handles GET /api/hostel-trending/{hostelBlock}.
func (h *RecommendationHandler) HandleTrending(w http.ResponseWriter, r *http.Request) {
	const op = "api.hostel_trending"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	hostel := pathParam(r, "/api/hostel-trending/")
	if hostel == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Trending(r.Context(), hostel))
}

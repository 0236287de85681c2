// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/okian/canteen/internal/adapters/repository"
	service "github.com/okian/canteen/internal/app"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecommendationDependencies
	OrderDependencies
	CatalogDependencies
	UserDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler         *HealthHandler
	statsHandler          *StatsHandler
	recommendationHandler *RecommendationHandler
	orderHandler          *OrderHandler
	catalogHandler        *CatalogHandler
	userHandler           *UserHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:         NewHealthHandler(),
		statsHandler:          NewStatsHandler(statsProvider),
		recommendationHandler: NewRecommendationHandler(deps),
		orderHandler:          NewOrderHandler(deps),
		catalogHandler:        NewCatalogHandler(deps),
		userHandler:           NewUserHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, LoggingMiddleware(MetricsMiddleware(h, endpoint), endpoint))
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	handle("/stats", "stats", s.statsHandler.HandleStats)

	handle("/api/recommendations", "recommendations", s.recommendationHandler.HandleRecommendations)
	handle("/api/hostel-trending/", "hostel_trending", s.recommendationHandler.HandleTrending)

	handle("/api/orders", "orders", s.orderHandler.HandlePostOrder)
	handle("/api/orders/", "user_orders", s.orderHandler.HandleGetUserOrders)

	handle("/api/foods", "foods", s.catalogHandler.HandleListFoods)
	handle("/api/foods/", "food", s.catalogHandler.HandleGetFood)
	handle("/api/restaurants", "restaurants", s.catalogHandler.HandleListRestaurants)
	handle("/api/restaurants/", "restaurant", s.catalogHandler.HandleGetRestaurant)
	handle("/api/hostels", "hostels", s.catalogHandler.HandleListHostels)

	handle("/api/users", "users", s.userHandler.HandlePostUser)
	handle("/api/signup", "signup", s.userHandler.HandlePostUser)
	handle("/api/users/", "user", s.userHandler.HandleGetUser)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and store error kinds to HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "conflict", Wrap(op, err))
	case errors.Is(err, service.ErrInvalidOrder), errors.Is(err, service.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// decodeBody reads a bounded JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// pathParam returns the single path segment after prefix, or "" if the
// remainder is empty or nested.
func pathParam(r *http.Request, prefix string) string {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if rest == r.URL.Path || strings.Contains(rest, "/") {
		return ""
	}
	return strings.TrimSpace(rest)
}

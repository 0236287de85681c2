package api

import (
	"context"
	"net/http"

	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/types"
)

// CatalogDependencies defines the catalog reads.
type CatalogDependencies interface {
	Foods(ctx context.Context) ([]model.Food, error)
	Food(ctx context.Context, id string) (types.FoodDetail, error)
	Restaurants(ctx context.Context) ([]model.Restaurant, error)
	Restaurant(ctx context.Context, id string) (types.RestaurantDetail, error)
	HostelBlocks(ctx context.Context) ([]model.HostelBlock, error)
}

// CatalogHandler handles food, restaurant and hostel requests.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleListFoods handles GET /api/foods.
func (h *CatalogHandler) HandleListFoods(w http.ResponseWriter, r *http.Request) {
	list(w, r, "api.list_foods", h.deps.Foods)
}

// HandleListRestaurants handles GET /api/restaurants.
func (h *CatalogHandler) HandleListRestaurants(w http.ResponseWriter, r *http.Request) {
	list(w, r, "api.list_restaurants", h.deps.Restaurants)
}

// HandleListHostels handles GET /api/hostels.
func (h *CatalogHandler) HandleListHostels(w http.ResponseWriter, r *http.Request) {
	list(w, r, "api.list_hostels", h.deps.HostelBlocks)
}

// HandleGetFood handles GET /api/foods/{id}.
func (h *CatalogHandler) HandleGetFood(w http.ResponseWriter, r *http.Request) {
	get(w, r, "api.get_food", "/api/foods/", h.deps.Food)
}

// HandleGetRestaurant handles GET /api/restaurants/{id}.
func (h *CatalogHandler) HandleGetRestaurant(w http.ResponseWriter, r *http.Request) {
	get(w, r, "api.get_restaurant", "/api/restaurants/", h.deps.Restaurant)
}

func list[T any](w http.ResponseWriter, r *http.Request, op string, fetch func(context.Context) ([]T, error)) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	items, err := fetch(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func get[T any](w http.ResponseWriter, r *http.Request, op, prefix string, fetch func(context.Context, string) (T, error)) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := pathParam(r, prefix)
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	item, err := fetch(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/types"
)

// OrderDependencies defines the order pipeline operations.
type OrderDependencies interface {
	// PlaceOrder returns the completed order and whether its id was already
	// submitted.
	PlaceOrder(ctx context.Context, draft model.Order) (model.Order, bool, error)
	OrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
}

// OrderHandler handles order requests.
type OrderHandler struct {
	deps OrderDependencies
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(deps OrderDependencies) *OrderHandler {
	return &OrderHandler{deps: deps}
}

// orderRequest accepts the web client's "hostel" field next to hostelBlock.
type orderRequest struct {
	model.Order
	Hostel string `json:"hostel"`
}

// HandlePostOrder handles POST /api/orders requests.
func (h *OrderHandler) HandlePostOrder(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_order"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req orderRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	draft := req.Order
	if draft.HostelBlock == "" {
		draft.HostelBlock = req.Hostel
	}
	if draft.UserID == "" || len(draft.Items) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("userId and items are required")))
		return
	}

	order, duplicate, err := h.deps.PlaceOrder(r.Context(), draft)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	status := http.StatusAccepted
	if duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, types.OrderAck{Success: true, Duplicate: duplicate, Order: order})
}

// HandleGetUserOrders handles GET /api/orders/{userId} requests.
func (h *OrderHandler) HandleGetUserOrders(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_user_orders"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := pathParam(r, "/api/orders/")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	orders, err := h.deps.OrdersByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

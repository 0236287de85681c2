package api

import (
	"context"
	"net/http"

	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/types"
)

// UserDependencies defines signup and profile reads.
type UserDependencies interface {
	RegisterUser(ctx context.Context, u model.User) (model.User, error)
	User(ctx context.Context, id string) (model.User, error)
}

// UserHandler handles user requests.
type UserHandler struct {
	deps UserDependencies
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps UserDependencies) *UserHandler {
	return &UserHandler{deps: deps}
}

// HandlePostUser handles POST /api/users and POST /api/signup.
func (h *UserHandler) HandlePostUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_user"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var u model.User
	if err := decodeBody(w, r, &u); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	created, err := h.deps.RegisterUser(r.Context(), u)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.UserAck{Success: true, User: created})
}

// HandleGetUser handles GET /api/users/{id}.
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	get(w, r, "api.get_user", "/api/users/", h.deps.User)
}

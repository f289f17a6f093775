package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/platform/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts registration and the admin account-management routes on r,
// which is expected to be the /api/auth router.
func (h *Handler) RegisterRoutes(r chi.Router, g httpx.Guards) {
	r.Post("/register", h.register)

	r.Group(func(r chi.Router) {
		r.Use(g.Authenticated, g.Admin)
		r.Get("/users/pending", h.listPending)
		r.Get("/users/pending/count", h.countPending)
		r.Get("/users/approved", h.listApproved)
		r.Put("/users/{id}/approve", h.approve)
		r.Delete("/users/{id}/reject", h.reject)
		r.Put("/users/{id}/status", h.setStatus)
		r.Delete("/users/{id}", h.delete)
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err, "Registration failed")
		return
	}
	if _, err := h.service.Register(r.Context(), req); err != nil {
		httpx.Error(w, r, err, "Registration failed")
		return
	}
	httpx.Respond(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration submitted. Please wait for admin approval before logging in.",
		"pending": true,
	})
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListPending(r.Context())
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch pending users")
		return
	}
	httpx.Respond(w, http.StatusOK, nonNil(users))
}

func (h *Handler) countPending(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.CountPending(r.Context())
	if err != nil {
		httpx.Error(w, r, err, "Failed to get pending count")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]int{"count": n})
}

func (h *Handler) listApproved(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.FindApprovedSalesUsers(r.Context())
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch approved users")
		return
	}
	httpx.Respond(w, http.StatusOK, nonNil(users))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, r, err, "Failed to approve user")
		return
	}
	u, err := h.service.Approve(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err, "Failed to approve user")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"message": "User approved successfully", "user": u})
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err == nil {
		err = h.service.Reject(r.Context(), id)
	}
	if err != nil {
		httpx.Error(w, r, err, "Failed to reject user")
		return
	}
	httpx.Message(w, "User rejected and removed")
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	// The admin UI sends is_active as 0/1; JSON booleans are accepted too.
	var req struct {
		IsActive interface{} `json:"is_active"`
	}
	id, err := httpx.IDParam(r, "id")
	if err == nil {
		err = httpx.Decode(r, &req)
	}
	var active bool
	if err == nil {
		switch v := req.IsActive.(type) {
		case bool:
			active = v
		case float64:
			active = v != 0
		default:
			err = apperr.InvalidInput("is_active is required")
		}
	}
	if err != nil {
		httpx.Error(w, r, err, "Failed to update user status")
		return
	}
	u, err := h.service.SetActive(r.Context(), id, active)
	if err != nil {
		httpx.Error(w, r, err, "Failed to update user status")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"message": "User status updated", "user": u})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err == nil {
		err = h.service.Delete(r.Context(), id)
	}
	if err != nil {
		httpx.Error(w, r, err, "Failed to delete user")
		return
	}
	httpx.Message(w, "User deleted successfully")
}

func nonNil(users []*User) []*User {
	if users == nil {
		return []*User{}
	}
	return users
}

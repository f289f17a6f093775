package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/modules/user"
	"github.com/georgemunganga/orderdesk/internal/platform/httpx"
)

type Handler struct {
	service Service
	users   user.Service
}

func NewHandler(service Service, users user.Service) *Handler {
	return &Handler{service: service, users: users}
}

// RegisterRoutes mounts login and the current-account route on the /api/auth router.
func (h *Handler) RegisterRoutes(r chi.Router, g httpx.Guards) {
	r.Post("/login", h.login)
	r.With(g.Authenticated).Get("/me", h.me)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err, "Login failed")
		return
	}
	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, r, err, "Login failed")
		return
	}
	httpx.Respond(w, http.StatusOK, session)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.Unauthenticated("Access token required"), "")
		return
	}
	u, err := h.users.FindByID(r.Context(), id.ID)
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch user")
		return
	}
	httpx.Respond(w, http.StatusOK, profileOf(u))
}

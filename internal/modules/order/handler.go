package order

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/modules/auth"
	"github.com/georgemunganga/orderdesk/internal/modules/user"
	"github.com/georgemunganga/orderdesk/internal/platform/httpx"
)

// Handler exposes order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterRoutes mounts the order routes on the /api/orders router.
func (h *Handler) RegisterRoutes(r chi.Router, g httpx.Guards) {
	r.Use(g.Authenticated)

	r.Group(func(r chi.Router) {
		r.Use(g.Sales)
		r.Post("/", h.createOrder)          // POST   /api/orders
		r.Get("/my-orders", h.listMyOrders) // GET    /api/orders/my-orders?status=
	})

	r.Get("/{id}", h.getOrder)       // GET    /api/orders/{id}
	r.Delete("/{id}", h.deleteOrder) // DELETE /api/orders/{id}

	r.Group(func(r chi.Router) {
		r.Use(g.Admin)
		r.Get("/", h.listOrders)                                  // GET /api/orders?status=&sales_user_id=
		r.Put("/{id}/status", h.updateStatus)                     // PUT /api/orders/{id}/status
		r.Get("/admin/notifications/count", h.countUnnotified)    // GET /api/orders/admin/notifications/count
		r.Get("/admin/notifications/unread", h.listUnnotified)    // GET /api/orders/admin/notifications/unread
		r.Put("/admin/notifications/{id}/read", h.markNotified)   // PUT /api/orders/admin/notifications/{id}/read
		r.Put("/admin/notifications/read-all", h.markAllNotified) // PUT /api/orders/admin/notifications/read-all
		r.Get("/admin/sales-users", h.listSalesUsers)             // GET /api/orders/admin/sales-users
	})
}

func caller(r *http.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return auth.Identity{}, apperr.Unauthenticated("Access token required")
	}
	return id, nil
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	who, err := caller(r)
	if err == nil {
		err = httpx.Decode(r, &req)
	}
	if err != nil {
		httpx.Error(w, r, err, "Failed to create order")
		return
	}
	o, err := h.service.CreateOrder(r.Context(), who, req)
	if err != nil {
		httpx.Error(w, r, err, "Failed to create order")
		return
	}
	httpx.Respond(w, http.StatusCreated, o)
}

func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch orders")
		return
	}
	orders, err := h.service.ListMyOrders(r.Context(), who, r.URL.Query().Get("status"))
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch orders")
		return
	}
	httpx.Respond(w, http.StatusOK, nonNil(orders))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var salesUserID int64
	if v := r.URL.Query().Get("sales_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Error(w, r, apperr.InvalidInput("sales_user_id must be a number"), "")
			return
		}
		salesUserID = id
	}
	orders, err := h.service.ListOrders(r.Context(), r.URL.Query().Get("status"), salesUserID)
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch orders")
		return
	}
	httpx.Respond(w, http.StatusOK, nonNil(orders))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	var id int64
	if err == nil {
		id, err = httpx.IDParam(r, "id")
	}
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch order")
		return
	}
	o, err := h.service.GetOrder(r.Context(), who, id)
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch order")
		return
	}
	httpx.Respond(w, http.StatusOK, o)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	id, err := httpx.IDParam(r, "id")
	if err == nil {
		err = httpx.Decode(r, &req)
	}
	if err != nil {
		httpx.Error(w, r, err, "Failed to update order status")
		return
	}
	o, err := h.service.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		httpx.Error(w, r, err, "Failed to update order status")
		return
	}
	httpx.Respond(w, http.StatusOK, o)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	var id int64
	if err == nil {
		id, err = httpx.IDParam(r, "id")
	}
	if err == nil {
		err = h.service.DeleteOrder(r.Context(), who, id)
	}
	if err != nil {
		httpx.Error(w, r, err, "Failed to delete order")
		return
	}
	httpx.Message(w, "Order deleted successfully")
}

func (h *Handler) countUnnotified(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.CountUnnotified(r.Context())
	if err != nil {
		httpx.Error(w, r, err, "Failed to get notification count")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]int{"count": n})
}

func (h *Handler) listUnnotified(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListUnnotified(r.Context())
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch unnotified orders")
		return
	}
	httpx.Respond(w, http.StatusOK, nonNil(orders))
}

func (h *Handler) markNotified(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err == nil {
		err = h.service.MarkNotified(r.Context(), id)
	}
	if err != nil {
		httpx.Error(w, r, err, "Failed to mark order as notified")
		return
	}
	httpx.Message(w, "Order marked as notified")
}

func (h *Handler) markAllNotified(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllNotified(r.Context()); err != nil {
		httpx.Error(w, r, err, "Failed to mark orders as notified")
		return
	}
	httpx.Message(w, "All orders marked as notified")
}

func (h *Handler) listSalesUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.SalesUsers(r.Context())
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch sales users")
		return
	}
	if users == nil {
		users = []*user.User{}
	}
	httpx.Respond(w, http.StatusOK, users)
}

func nonNil(orders []*Order) []*Order {
	if orders == nil {
		return []*Order{}
	}
	return orders
}

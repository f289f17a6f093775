package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/orderdesk/internal/platform/httpx"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterRoutes mounts the product routes on the /api/products router.
func (h *Handler) RegisterRoutes(r chi.Router, g httpx.Guards) {
	r.Use(g.Authenticated)
	r.Get("/", h.listProducts)
	r.Get("/active", h.listActiveProducts)
	r.Get("/{id}", h.getProduct)

	r.Group(func(r chi.Router) {
		r.Use(g.Admin)
		r.Post("/", h.createProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch products")
		return
	}
	httpx.Respond(w, http.StatusOK, nonNil(products))
}

func (h *Handler) listActiveProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListActiveProducts(r.Context())
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch products")
		return
	}
	httpx.Respond(w, http.StatusOK, nonNil(products))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch product")
		return
	}
	p, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err, "Failed to fetch product")
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err, "Failed to create product")
		return
	}
	p, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, err, "Failed to create product")
		return
	}
	httpx.Respond(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	id, err := httpx.IDParam(r, "id")
	if err == nil {
		err = httpx.Decode(r, &in)
	}
	if err != nil {
		httpx.Error(w, r, err, "Failed to update product")
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), id, in)
	if err != nil {
		httpx.Error(w, r, err, "Failed to update product")
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err == nil {
		err = h.service.DeleteProduct(r.Context(), id)
	}
	if err != nil {
		httpx.Error(w, r, err, "Failed to delete product")
		return
	}
	httpx.Message(w, "Product deleted successfully")
}

func nonNil(products []*Product) []*Product {
	if products == nil {
		return []*Product{}
	}
	return products
}

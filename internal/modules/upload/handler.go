package upload

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/platform/httpx"
)

type Handler struct {
	storage Storage
	urlBase string
}

// NewHandler builds image URLs as "<backendURL>/uploads/<name>" when backendURL is set,
// and "<urlBase>/<name>" otherwise.
func NewHandler(storage Storage, backendURL, urlBase string) *Handler {
	base := strings.TrimRight(urlBase, "/")
	if backendURL != "" {
		base = strings.TrimRight(backendURL, "/") + "/uploads"
	}
	return &Handler{storage: storage, urlBase: base}
}

// RegisterRoutes mounts the image routes on the /api/upload router.
func (h *Handler) RegisterRoutes(r chi.Router, g httpx.Guards) {
	r.Use(g.Authenticated, g.Admin)
	r.Post("/image", h.uploadImage)
	r.Delete("/image", h.deleteImage)
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+1<<20)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Error(w, r, apperr.InvalidInput("Image must be at most 5 MB"), "")
			return
		}
		httpx.Error(w, r, apperr.InvalidInput("No image file provided"), "")
		return
	}
	defer file.Close()

	if header.Size > MaxImageSize {
		httpx.Error(w, r, apperr.InvalidInput("Image must be at most 5 MB"), "")
		return
	}
	name, err := h.storage.Save(header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		httpx.Error(w, r, err, "Failed to upload image")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"url":      h.urlBase + "/" + name,
		"filename": name,
	})
}

func (h *Handler) deleteImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename string `json:"filename"`
	}
	err := httpx.Decode(r, &req)
	if err == nil && strings.TrimSpace(req.Filename) == "" {
		err = apperr.InvalidInput("No filename provided")
	}
	if err == nil {
		err = h.storage.Delete(req.Filename)
	}
	if err != nil {
		httpx.Error(w, r, err, "Failed to delete image")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Image deleted"})
}

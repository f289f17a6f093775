// Package httpx holds the JSON plumbing shared by the module handlers.
package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/orderdesk/internal/apperr"
)

// Respond writes body as JSON with the given status.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("write response body")
	}
}

// Message writes {"message": msg} with status 200.
func Message(w http.ResponseWriter, msg string) {
	Respond(w, http.StatusOK, map[string]string{"message": msg})
}

// Error maps err to its status and writes {"error": ...}. Internal errors are logged with the
// request id and reach the client only as fallback.
func Error(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		}).Error(fallback)
	}
	Respond(w, status, map[string]string{"error": apperr.Message(err, fallback)})
}

// Decode reads a JSON request body into dst.
func Decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.InvalidInput("invalid request body: %v", err)
	}
	return nil
}

// IDParam parses a numeric chi URL parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput("invalid %s %q", name, raw)
	}
	return id, nil
}

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jogardn/storefront/internal/schema"
	"github.com/jogardn/storefront/internal/service"
	"github.com/jogardn/storefront/internal/store"
	"github.com/sirupsen/logrus"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string, fields map[string][]string) {
	payload := map[string]interface{}{
		"success": false,
		"message": message,
	}
	if len(fields) > 0 {
		payload["errors"] = fields
	}
	respondWithJSON(w, code, payload)
}

// respondWithServiceError translates a service error into a status code and
// error envelope. Unexpected errors are logged and reported as 500.
func (h *Handler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *schema.ValidationError
		stockErr      *service.InsufficientStockError
		transitionErr *service.TransitionError
		notFoundErr   *service.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, "Validation failed", validationErr.Fields)
	case errors.As(err, &stockErr):
		respondWithError(w, http.StatusBadRequest, stockErr.Error(), nil)
	case errors.As(err, &transitionErr):
		respondWithError(w, http.StatusBadRequest, "Invalid status change",
			map[string][]string{"status": {transitionErr.Error()}})
	case errors.Is(err, service.ErrNotCancellable):
		respondWithError(w, http.StatusBadRequest, "Cannot cancel shipped or delivered orders", nil)
	case errors.As(err, &notFoundErr):
		respondWithError(w, http.StatusNotFound, capitalize(notFoundErr.Resource)+" not found", nil)
	case errors.Is(err, store.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, store.ErrOutOfRange):
		respondWithError(w, http.StatusBadRequest, "Value out of range", nil)
	case errors.Is(err, store.ErrInUse):
		respondWithError(w, http.StatusConflict, "Resource is still referenced by other records", nil)
	default:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": RequestID(r.Context()),
		}).Error("Request failed")
		respondWithError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// pathID reads the numeric {id} route variable. The route pattern already
// rejects non-digits, so a failure here means the value overflowed.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

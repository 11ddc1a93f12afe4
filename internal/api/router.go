// Package api exposes the storefront service over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jogardn/storefront/internal/service"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes caps request bodies read by the handlers.
const maxBodyBytes = 1 << 20

type Handler struct {
	svc    *service.Service
	logger *logrus.Logger
	feed   http.HandlerFunc
}

func NewHandler(svc *service.Service, logger *logrus.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SetFeed mounts a live order feed at /ws.
func (h *Handler) SetFeed(feed http.HandlerFunc) {
	h.feed = feed
}

func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	router.HandleFunc("/customers", h.ListCustomers).Methods("GET")
	router.HandleFunc("/customers", h.CreateCustomer).Methods("POST")
	router.HandleFunc("/customers/{id:[0-9]+}", h.GetCustomer).Methods("GET")
	router.HandleFunc("/customers/{id:[0-9]+}", h.UpdateCustomer).Methods("PUT")
	router.HandleFunc("/customers/{id:[0-9]+}", h.DeleteCustomer).Methods("DELETE")
	router.HandleFunc("/customers/{id:[0-9]+}/orders", h.ListCustomerOrders).Methods("GET")

	router.HandleFunc("/customer_accounts", h.CreateAccount).Methods("POST")
	router.HandleFunc("/customer_accounts/{id:[0-9]+}", h.GetAccount).Methods("GET")
	router.HandleFunc("/customer_accounts/{id:[0-9]+}", h.UpdateAccount).Methods("PUT")
	router.HandleFunc("/customer_accounts/{id:[0-9]+}", h.DeleteAccount).Methods("DELETE")

	router.HandleFunc("/products", h.ListProducts).Methods("GET")
	router.HandleFunc("/products", h.CreateProduct).Methods("POST")
	router.HandleFunc("/products/{id:[0-9]+}", h.GetProduct).Methods("GET")
	router.HandleFunc("/products/{id:[0-9]+}", h.UpdateProduct).Methods("PUT")
	router.HandleFunc("/products/{id:[0-9]+}", h.DeleteProduct).Methods("DELETE")

	router.HandleFunc("/orders", h.ListOrders).Methods("GET")
	router.HandleFunc("/orders", h.PlaceOrder).Methods("POST")
	router.HandleFunc("/orders/{id:[0-9]+}", h.GetOrder).Methods("GET")
	router.HandleFunc("/orders/{id:[0-9]+}", h.UpdateOrder).Methods("PUT")
	router.HandleFunc("/orders/{id:[0-9]+}", h.DeleteOrder).Methods("DELETE")
	router.HandleFunc("/orders/{id:[0-9]+}/track", h.TrackOrder).Methods("GET")
	router.HandleFunc("/orders/{id:[0-9]+}/cancel", h.CancelOrder).Methods("PUT")

	if h.feed != nil {
		router.HandleFunc("/ws", h.feed)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Resource not found", nil)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware(h.logger))

	return router
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.logger.WithError(err).Warn("Health check failed")
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"service": "storefront",
			"error":   "database connection failed",
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "storefront",
	})
}

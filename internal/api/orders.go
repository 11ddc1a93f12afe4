package api

import (
	"net/http"

	"github.com/jogardn/storefront/internal/schema"
	"github.com/sirupsen/logrus"
)

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	in, err := schema.LoadPlaceOrder(body)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	order, err := h.svc.PlaceOrder(r.Context(), in)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"customer_id": in.CustomerID,
			"items_count": len(in.Items),
		}).Info("Order rejected")
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Order placed successfully",
		"id":      order.ID,
		"order":   order,
	})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Order not found", nil)
		return
	}

	order, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Order not found", nil)
		return
	}

	tracking, err := h.svc.TrackOrder(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tracking)
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Order not found", nil)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	in, err := schema.LoadOrderUpdate(body)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	order, err := h.svc.UpdateOrder(r.Context(), id, in)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Order updated successfully",
		"order":   order,
	})
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Order not found", nil)
		return
	}

	order, err := h.svc.CancelOrder(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Order not found", nil)
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Order removed successfully",
	})
}

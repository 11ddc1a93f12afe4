package api

import (
	"net/http"

	"github.com/jogardn/storefront/internal/schema"
)

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	in, err := schema.LoadAccountCreate(body)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	account, err := h.svc.CreateAccount(r.Context(), in)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success":          true,
		"message":          "Customer account created successfully",
		"customer_account": account,
	})
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Customer account not found", nil)
		return
	}

	account, err := h.svc.GetAccount(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Customer account not found", nil)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	in, err := schema.LoadAccountUpdate(body)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	account, err := h.svc.UpdateAccount(r.Context(), id, in)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"message":          "Customer account updated successfully",
		"customer_account": account,
	})
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Customer account not found", nil)
		return
	}

	if err := h.svc.DeleteAccount(r.Context(), id); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Customer account removed successfully",
	})
}

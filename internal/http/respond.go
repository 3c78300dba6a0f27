package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/TDila/smart-cart/internal/repository"
	"github.com/TDila/smart-cart/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleServiceError maps service and repository errors to HTTP status codes
func handleServiceError(w http.ResponseWriter, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, repository.ErrCartNotFound):
		httpStatus = http.StatusNotFound
		code = "cart_not_found"
	case errors.Is(err, repository.ErrProductNotFound):
		httpStatus = http.StatusNotFound
		code = "product_not_found"
	case errors.Is(err, repository.ErrOrderNotFound):
		httpStatus = http.StatusNotFound
		code = "order_not_found"
	case errors.Is(err, service.ErrItemNotFound):
		httpStatus = http.StatusNotFound
		code = "item_not_found"
	case errors.Is(err, service.ErrInvalidQuantity):
		httpStatus = http.StatusBadRequest
		code = "invalid_quantity"
	case errors.Is(err, service.ErrEmptyCart):
		httpStatus = http.StatusBadRequest
		code = "empty_cart"
	case errors.Is(err, repository.ErrInsufficientInventory):
		httpStatus = http.StatusConflict
		code = "insufficient_inventory"
	case errors.Is(err, repository.ErrCartLocked):
		httpStatus = http.StatusConflict
		code = "cart_busy"
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}

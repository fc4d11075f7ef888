package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/ishop4u/internal/api"
	"github.com/fjod/ishop4u/internal/checkout"
	"github.com/fjod/ishop4u/internal/logger"
	"github.com/fjod/ishop4u/internal/service"
	"go.uber.org/zap"
)

const maxRequestBodySize = 1 << 20 // 1MB

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, ErrorResponse{Error: message, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleError converts service and store errors to HTTP status codes.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var httpStatus int
	var code string
	message := err.Error()

	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		httpStatus, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrInvalidQuantity):
		httpStatus, code = http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, service.ErrInvalidProduct):
		httpStatus, code = http.StatusBadRequest, "invalid_product"
	case errors.Is(err, service.ErrInvalidLine):
		httpStatus, code = http.StatusBadRequest, "invalid_line_id"
	case errors.Is(err, checkout.ErrInvalidAddress):
		httpStatus, code = http.StatusBadRequest, "invalid_address"
	case errors.Is(err, checkout.ErrEmptyCart):
		httpStatus, code = http.StatusBadRequest, "empty_cart"
	case errors.Is(err, api.ErrUnavailable), errors.Is(err, api.ErrTransport):
		httpStatus, code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, api.ErrRejected):
		httpStatus, code = http.StatusBadGateway, "store_rejected"
		var se *api.StatusError
		if errors.As(err, &se) && se.Message != "" {
			message = se.Message
		}
	default:
		httpStatus, code, message = http.StatusInternalServerError, "internal_error", "internal server error"
	}

	if httpStatus >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", zap.Int("status", httpStatus), zap.Error(err))
	}
	respondError(w, r, httpStatus, code, message)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jkoskela/nakkikone/pkg/core/model"
)

// handleError translates the domain taxonomy into HTTP statuses. Every
// taxonomy member is an expected outcome; anything else is a storage or
// programming failure and surfaces as a generic 500.
func (h *Handler) handleError(w http.ResponseWriter, err error) {
	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		writeJSON(w, statusForCode(domainErr.Code), ErrorResponse{
			Error: ErrorDetail{
				Code:    domainErr.Code,
				Message: domainErr.Message,
			},
		})
		return
	}

	h.logger.Error("Request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		},
	})
}

func statusForCode(code string) int {
	switch code {
	case "PROGRAM_NOT_FOUND", "SHIFT_NOT_FOUND", "BOOKING_NOT_FOUND":
		return http.StatusNotFound
	case "SLOT_TAKEN", "OVERLAPPING_BOOKING", "SHIFT_NOT_BOOKABLE":
		return http.StatusConflict
	case "INVALID_SLOT":
		return http.StatusBadRequest
	case "NOT_PERMITTED":
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "BAD_REQUEST",
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/port/http/dto"
)

type errorBody struct {
	Kind    string           `json:"kind"`
	Message string           `json:"message"`
	Fields  []dto.FieldError `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps domain errors to the error envelope. Field-level failures
// get kind "validation" with every failing field listed.
func respondError(w http.ResponseWriter, log logger.Logger, err error) {
	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, errorEnvelope{Error: errorBody{
			Kind:    "validation",
			Message: "request validation failed",
			Fields:  verr.Fields,
		}})
		return
	}

	kind, code := classify(err)
	if code == http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
		// Do not leak internals.
		respondJSON(w, code, errorEnvelope{Error: errorBody{Kind: kind, Message: "internal server error"}})
		return
	}

	respondJSON(w, code, errorEnvelope{Error: errorBody{Kind: kind, Message: err.Error()}})
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation", http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrOverlapConflict),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrPrematureCompletion),
		errors.Is(err, domain.ErrAlreadyReviewed),
		errors.Is(err, domain.ErrListingUnavailable),
		errors.Is(err, domain.ErrActiveBookingsExist),
		errors.Is(err, domain.ErrPaymentExists),
		errors.Is(err, domain.ErrVersionConflict):
		return "conflict", http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden", http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "unavailable", http.StatusServiceUnavailable
	default:
		return "internal", http.StatusInternalServerError
	}
}

package http

import (
	"net/http"

	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/port/http/dto"
	"github.com/askhat-dev/travel-marketplace/internal/service"
)

type PaymentHandler struct {
	svc service.PaymentService
	log logger.Logger
}

func NewPaymentHandler(svc service.PaymentService, log logger.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, log: log}
}

func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req dto.PaymentRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	input, err := req.ToInput()
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	payment, err := h.svc.Initiate(r.Context(), actor, input)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.RenderPayment(payment))
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	payment, err := h.svc.GetByID(r.Context(), actor, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderPayment(payment))
}

// Callback is the gateway webhook. The tx_ref may arrive as a query parameter
// or in the JSON body; verification happens against the gateway either way.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	txRef := r.URL.Query().Get("tx_ref")
	if txRef == "" {
		var req dto.PaymentCallbackRequest
		if err := dto.Decode(r.Body, &req); err != nil {
			respondError(w, h.log, err)
			return
		}
		txRef = req.TxRef
	}

	payment, err := h.svc.HandleCallback(r.Context(), txRef)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderPayment(payment))
}

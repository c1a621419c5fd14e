package http

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/port/http/dto"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
	"github.com/askhat-dev/travel-marketplace/internal/service"
)

type BookingHandler struct {
	svc service.BookingService
	log logger.Logger
}

func NewBookingHandler(svc service.BookingService, log logger.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, log: log}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	filter := repository.BookingFilter{
		ListingID: queryObjectID(r, "listing_id"),
		Status:    entity.BookingStatus(r.URL.Query().Get("status")),
		Page:      queryInt64(r, "page", 1),
		Limit:     queryInt64(r, "limit", 20),
	}

	bookings, err := h.svc.List(r.Context(), actor, filter)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderBookings(bookings))
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	booking, err := h.svc.GetByID(r.Context(), actor, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderBooking(booking))
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req dto.BookingRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	input, err := req.ToInput()
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	booking, err := h.svc.Create(r.Context(), actor, input)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.RenderBooking(booking))
}

// Update reschedules a pending booking, or routes a status change through the
// state machine when the payload carries a status.
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req dto.BookingUpdateRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	if req.IsTransition() {
		booking, err := h.svc.Transition(r.Context(), actor, id, entity.BookingStatus(req.Status))
		if err != nil {
			respondError(w, h.log, err)
			return
		}
		respondJSON(w, http.StatusOK, dto.RenderBooking(booking))
		return
	}

	current, err := h.svc.GetByID(r.Context(), actor, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	input, err := req.ToInput(current)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	booking, err := h.svc.Update(r.Context(), actor, id, input)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderBooking(booking))
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Confirm)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Cancel)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Complete)
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, actor service.Actor, id primitive.ObjectID) (*entity.Booking, error)) {
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

	booking, err := fn(r.Context(), actor, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderBooking(booking))
}

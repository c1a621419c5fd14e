package http

import (
	"net/http"

	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/port/http/dto"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
	"github.com/askhat-dev/travel-marketplace/internal/service"
)

type ListingHandler struct {
	svc service.ListingService
	log logger.Logger
}

func NewListingHandler(svc service.ListingService, log logger.Logger) *ListingHandler {
	return &ListingHandler{svc: svc, log: log}
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ListingFilter{
		City:         q.Get("city"),
		Country:      q.Get("country"),
		PropertyType: entity.PropertyType(q.Get("property_type")),
		MinPrice:     queryFloat(r, "min_price"),
		MaxPrice:     queryFloat(r, "max_price"),
		HostID:       queryObjectID(r, "host_id"),
		Page:         queryInt64(r, "page", 1),
		Limit:        queryInt64(r, "limit", 20),
	}
	if raw := q.Get("available"); raw == "true" || raw == "false" {
		avail := raw == "true"
		filter.Available = &avail
	}

	listings, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderListings(listings))
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	listing, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderListing(listing))
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req dto.ListingRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	listing, err := h.svc.Create(r.Context(), actor, req.ToParams())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.RenderListing(listing))
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req dto.ListingRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	listing, err := h.svc.Update(r.Context(), actor, id, req.ToParams())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderListing(listing))
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

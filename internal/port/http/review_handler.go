package http

import (
	"net/http"

	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/port/http/dto"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
	"github.com/askhat-dev/travel-marketplace/internal/service"
)

type ReviewHandler struct {
	svc service.ReviewService
	log logger.Logger
}

func NewReviewHandler(svc service.ReviewService, log logger.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, log: log}
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ReviewFilter{
		ListingID: queryObjectID(r, "listing_id"),
		UserID:    queryObjectID(r, "user_id"),
		MinRating: int(queryInt64(r, "min_rating", 0)),
		Page:      queryInt64(r, "page", 1),
		Limit:     queryInt64(r, "limit", 20),
	}

	reviews, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderReviews(reviews))
}

func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	review, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderReview(review))
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req dto.ReviewRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	input, err := req.ToInput()
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	review, err := h.svc.Create(r.Context(), actor, input)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.RenderReview(review))
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req dto.ReviewUpdateRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	review, err := h.svc.Update(r.Context(), actor, id, req.Rating, req.Comment)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderReview(review))
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

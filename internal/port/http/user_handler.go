package http

import (
	"net/http"

	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/port/http/dto"
	"github.com/askhat-dev/travel-marketplace/internal/service"
)

type UserHandler struct {
	svc service.UserService
	log logger.Logger
}

func NewUserHandler(svc service.UserService, log logger.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context(), queryInt64(r, "page", 1), queryInt64(r, "limit", 20))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderUsers(users))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	user, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.RenderUser(user))
}

// Register is unauthenticated; new accounts default to the guest role.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterUserRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	user, err := h.svc.Register(r.Context(), req.ToInput())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.RenderUser(user))
}

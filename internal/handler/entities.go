package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/service"
)

// PlayerHandler serves the players view.
type PlayerHandler struct {
	svc *service.PlayerService
}

// NewPlayerHandler creates a PlayerHandler.
func NewPlayerHandler(svc *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{svc: svc}
}

// List handles GET /players?q=.
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.svc.List(r.URL.Query().Get("q")))
}

// Get handles GET /players/{id}.
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, p)
}

// Create handles POST /players.
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.PlayerInput
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}
	p, err := h.svc.Create(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, p)
}

// Update handles PUT /players/{id}.
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.PlayerInput
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /players/{id}.
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// Transfers handles GET /players/{id}/transfers.
func (h *PlayerHandler) Transfers(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Transfers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, list)
}

// TeamHandler serves the teams view.
type TeamHandler struct {
	svc *service.TeamService
}

// NewTeamHandler creates a TeamHandler.
func NewTeamHandler(svc *service.TeamService) *TeamHandler {
	return &TeamHandler{svc: svc}
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.svc.List(r.URL.Query().Get("q")))
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, t)
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.TeamInput
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}
	t, err := h.svc.Create(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, t)
}

func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.TeamInput
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}
	t, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, t)
}

func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// Players handles GET /teams/{id}/players.
func (h *TeamHandler) Players(w http.ResponseWriter, r *http.Request) {
	squad, err := h.svc.Players(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, squad)
}

// TransferHandler serves the transfers view.
type TransferHandler struct {
	svc *service.TransferService
}

// NewTransferHandler creates a TransferHandler.
func NewTransferHandler(svc *service.TransferService) *TransferHandler {
	return &TransferHandler{svc: svc}
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.svc.List(r.URL.Query().Get("q")))
}

func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, t)
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.TransferInput
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}
	t, err := h.svc.Create(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, t)
}

func (h *TransferHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.TransferInput
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}
	t, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, t)
}

func (h *TransferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// UserHandler serves the admin-only users view.
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.svc.List(r.URL.Query().Get("q")))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.UserInput
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}
	u, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, u)
}

type roleRequest struct {
	Role domain.Role `json:"role"`
}

// UpdateRole handles PATCH /users/{id}/role.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var input roleRequest
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}
	u, err := h.svc.UpdateRole(r.Context(), chi.URLParam(r, "id"), input.Role)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

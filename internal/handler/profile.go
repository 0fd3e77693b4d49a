package handler

import (
	"net/http"
	"time"

	"github.com/transferdesk/platform/internal/auth"
	"github.com/transferdesk/platform/internal/dashboard"
	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/service"
	"github.com/transferdesk/platform/internal/store"
)

// ProfileHandler serves the signed-in user's own profile.
type ProfileHandler struct {
	users *service.UserService
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(users *service.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

type meResponse struct {
	UserID    string       `json:"user_id"`
	Email     string       `json:"email"`
	Role      domain.Role  `json:"role"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
	Views     []string     `json:"views"`
}

// Me handles GET /me. User is null when the account has no users record.
// Views lists the back office areas the caller's role may open.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	resp := meResponse{UserID: id.UserID, Email: id.Email, Role: id.Role, ExpiresAt: id.ExpiresAt, Views: []string{}}
	for _, v := range auth.Views() {
		if v.Permits(id.Role) {
			resp.Views = append(resp.Views, v.Name)
		}
	}

	u, err := h.users.Get(r.Context(), id.UserID)
	switch {
	case err == nil:
		resp.User = u
	case !domain.IsNotFound(err):
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, resp)
}

// UpdateMe handles PATCH /me.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var input service.ProfileInput
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}

	id := auth.IdentityFromContext(r.Context())
	u, err := h.users.UpdateProfile(r.Context(), id.UserID, input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, u)
}

// DashboardHandler serves the landing view figures.
type DashboardHandler struct {
	stores *store.Stores
	now    func() time.Time
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(stores *store.Stores) *DashboardHandler {
	return &DashboardHandler{stores: stores, now: time.Now}
}

// Get handles GET /dashboard. Figures are recomputed on every request.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats := dashboard.Compute(
		h.stores.Players.List(),
		h.stores.Teams.List(),
		h.stores.Transfers.List(),
		h.now(),
	)
	RespondJSON(w, http.StatusOK, stats)
}

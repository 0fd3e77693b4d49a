package handler

import (
	"encoding/json"
	"net/http"

	"github.com/transferdesk/platform/internal/infra"
	"github.com/transferdesk/platform/internal/store"
)

// HealthHandler returns a health check endpoint. The service is unhealthy
// until the stores have loaded and while the database is unreachable.
func HealthHandler(db infra.Pinger, stores *store.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := infra.HealthCheck(r.Context(), db); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		if !stores.Players.Loaded() || !stores.Teams.Loaded() || !stores.Transfers.Loaded() || !stores.Users.Loaded() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "loading"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}

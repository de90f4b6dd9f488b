package app

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Reconciliation
	r.HandleFunc("/api/reconcile", deps.ReconcileHandler.Reconcile).Methods("POST")

	// Local calendars as ICS feeds
	r.HandleFunc("/api/calendars/{kind}.ics", deps.IcsHandler.GetFeed).Methods("GET")

	// Google integration
	if deps.GoogleAuth != nil {
		r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleHandler.OAuthLogin).Methods("GET")
		r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleHandler.OAuthCallback).Methods("GET")
		r.HandleFunc("/api/integrations/google/auth", deps.GoogleHandler.OAuthLogout).Methods("DELETE")
	}
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
}

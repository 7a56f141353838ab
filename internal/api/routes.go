package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Symbol routes
	api.HandleFunc("/symbols", handler.GetAllSymbols).Methods("GET")
	api.HandleFunc("/symbols", handler.AddSymbol).Methods("POST")
	api.HandleFunc("/symbols/{symbol}", handler.GetSymbol).Methods("GET")
	api.HandleFunc("/symbols/{symbol}", handler.DeactivateSymbol).Methods("DELETE")
	api.HandleFunc("/symbols/{symbol}/quotes", handler.GetQuotes).Methods("GET")

	// Watch routes
	api.HandleFunc("/watches", handler.GetAllWatches).Methods("GET")
	api.HandleFunc("/watches", handler.AddWatch).Methods("POST")
	api.HandleFunc("/watches/{id}", handler.RemoveWatch).Methods("DELETE")

	// Notification ledger
	api.HandleFunc("/notifications", handler.GetNotifications).Methods("GET")

	return r
}

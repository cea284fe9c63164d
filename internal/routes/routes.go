package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"secdocs/internal/handlers"
)

// Handlers bundles everything RegisterRoutes needs to wire the router.
type Handlers struct {
	Health http.HandlerFunc
	Home   http.HandlerFunc

	ChatHandler         *handlers.ChatHandler
	DocHandler          *handlers.DocumentHandler
	ConversationHandler *handlers.ConversationHandler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	// Health endpoints
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/", h.Home).Methods(http.MethodGet)

	// Everything under /api requires a caller identity
	api := router.PathPrefix("/api").Subrouter()
	api.Use(handlers.AuthMiddleware)

	api.HandleFunc("/chat", h.ChatHandler.Chat).Methods(http.MethodPost)

	api.HandleFunc("/documents", h.DocHandler.Upload).Methods(http.MethodPost)
	api.HandleFunc("/documents", h.DocHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", h.DocHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/documents/{id}/tags", h.DocHandler.UpdateTags).Methods(http.MethodPut)

	api.HandleFunc("/conversations", h.ConversationHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/conversations", h.ConversationHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{id}/messages", h.ConversationHandler.Messages).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{id}", h.ConversationHandler.Delete).Methods(http.MethodDelete)
}

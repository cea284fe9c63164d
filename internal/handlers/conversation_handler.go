package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"secdocs/internal/models"
	"secdocs/internal/services"
)

// ConversationHandler handles HTTP requests for conversations and their
// message history
type ConversationHandler struct {
	convService *services.ConversationService
	logger      *log.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(convService *services.ConversationService, logger *log.Logger) *ConversationHandler {
	return &ConversationHandler{
		convService: convService,
		logger:      logger,
	}
}

// Create starts a new conversation
// @Summary Create a conversation
// @Description Create an empty conversation owned by the caller
// @Tags conversations
// @Accept json
// @Produce json
// @Param request body models.CreateConversationRequest true "Conversation title"
// @Success 201 {object} models.Conversation
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/conversations [post]
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		sendError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.convService.Create(r.Context(), userID, req.Title)
	if err != nil {
		h.logger.Printf("Conversation create failed: %v", err)
		sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, conv)
}

// List returns the caller's conversations
// @Summary List conversations
// @Description List the caller's conversations, most recently active first, optionally filtered by title
// @Tags conversations
// @Produce json
// @Param q query string false "Title filter, case-insensitive substring match"
// @Success 200 {array} models.Conversation
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/conversations [get]
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		sendError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	convs, err := h.convService.List(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Printf("Conversation list failed: %v", err)
		sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusOK, convs)
}

// Messages returns a conversation's message history
// @Summary List conversation messages
// @Description List the messages of a conversation in creation order
// @Tags conversations
// @Produce json
// @Param id path int true "Conversation ID"
// @Success 200 {array} models.Message
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/conversations/{id}/messages [get]
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		sendError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := pathID(r)
	if err != nil {
		sendError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	msgs, err := h.convService.Messages(r.Context(), userID, id)
	if err != nil {
		h.logger.Printf("Message list failed: %v", err)
		sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusOK, msgs)
}

// Delete removes a conversation and its messages
// @Summary Delete a conversation
// @Description Delete a conversation together with its message history
// @Tags conversations
// @Produce json
// @Param id path int true "Conversation ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/conversations/{id} [delete]
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		sendError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := pathID(r)
	if err != nil {
		sendError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	if err := h.convService.Delete(r.Context(), userID, id); err != nil {
		h.logger.Printf("Conversation delete failed: %v", err)
		sendFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

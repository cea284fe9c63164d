package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"secdocs/internal/models"
	"secdocs/internal/services"
)

// ChatHandler handles HTTP requests for chat turns
type ChatHandler struct {
	chatService *services.ChatService
	logger      *log.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService, logger *log.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat handles a chat turn
// @Summary Chat with the assistant
// @Description Send a message in an existing conversation; the answer is grounded in the most relevant uploaded documents
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "Chat request"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		sendError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Printf("Failed to decode chat request: %v", err)
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ConversationID == 0 {
		sendError(w, http.StatusBadRequest, "conversationId is required")
		return
	}

	resp, err := h.chatService.Chat(r.Context(), userID, req.ConversationID, req.Message)
	if err != nil {
		h.logger.Printf("Chat turn failed: %v", err)
		sendFailure(w, err)
		return
	}

	sendJSON(w, http.StatusOK, resp)
}

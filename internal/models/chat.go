package models

// BasicResponse is the minimal status payload for health-style endpoints.
type BasicResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ChatRequest is the incoming body for POST /api/chat. The conversation
// must already exist and belong to the caller; the chat endpoint never
// creates one implicitly.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID int64  `json:"conversationId"`
}

// ChatResponse is the successful response for a chat turn: the persisted
// assistant message plus the documents that grounded it.
type ChatResponse struct {
	Message *Message    `json:"message"`
	Sources []SourceRef `json:"sources"`
}

// CreateConversationRequest is the body for POST /api/conversations.
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// UploadDocumentRequest is the body for POST /api/documents.
type UploadDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateTagsRequest is the body for PUT /api/documents/{id}/tags.
type UpdateTagsRequest struct {
	Tags []string `json:"tags"`
}

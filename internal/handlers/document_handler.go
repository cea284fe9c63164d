package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"secdocs/internal/models"
	"secdocs/internal/services"
)

// DocumentHandler handles HTTP requests for document management
type DocumentHandler struct {
	docService *services.DocumentService
	logger     *log.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService *services.DocumentService, logger *log.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// documentView is the API projection of a document; the embedding stays
// server-side.
type documentView struct {
	ID        int64                   `json:"id"`
	Title     string                  `json:"title"`
	Content   string                  `json:"content"`
	Metadata  models.DocumentMetadata `json:"metadata"`
	CreatedAt string                  `json:"created_at"`
	OwnerID   int64                   `json:"owner_id"`
}

func viewOfDocument(doc *models.Document) documentView {
	return documentView{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		Metadata:  doc.Metadata,
		CreatedAt: doc.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		OwnerID:   doc.OwnerID,
	}
}

// Upload ingests a new document
// @Summary Upload a document
// @Description Normalize, classify and embed a text document into the knowledge base
// @Tags documents
// @Accept json
// @Produce json
// @Param request body models.UploadDocumentRequest true "Document to upload"
// @Success 201 {object} documentView
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		sendError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.UploadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.docService.Upload(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		h.logger.Printf("Document upload failed: %v", err)
		sendFailure(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, viewOfDocument(doc))
}

// List returns all documents
// @Summary List documents
// @Description List every document in the knowledge base
// @Tags documents
// @Produce json
// @Success 200 {array} documentView
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.List(r.Context())
	if err != nil {
		h.logger.Printf("Document list failed: %v", err)
		sendFailure(w, err)
		return
	}

	views := make([]documentView, len(docs))
	for i, doc := range docs {
		views[i] = viewOfDocument(doc)
	}
	sendJSON(w, http.StatusOK, views)
}

// Delete removes a document
// @Summary Delete a document
// @Description Remove a document from the knowledge base
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/documents/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	if err := h.docService.Delete(r.Context(), id); err != nil {
		h.logger.Printf("Document delete failed: %v", err)
		sendFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateTags replaces a document's tags
// @Summary Update document tags
// @Description Replace the tag set of a document, leaving other metadata untouched
// @Tags documents
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param request body models.UpdateTagsRequest true "New tags"
// @Success 200 {object} documentView
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/documents/{id}/tags [put]
func (h *DocumentHandler) UpdateTags(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	var req models.UpdateTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.docService.UpdateTags(r.Context(), id, req.Tags)
	if err != nil {
		h.logger.Printf("Tag update failed: %v", err)
		sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusOK, viewOfDocument(doc))
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

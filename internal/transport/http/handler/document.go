package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ragchat/internal/app"
	"ragchat/internal/transport/http/response"
)

type DocumentHandler struct {
	docService *app.DocumentService
}

type UpdateDocumentRequest struct {
	Title    *string   `json:"title"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
}

func NewDocumentHandler(docService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

func (h *DocumentHandler) List(c *gin.Context) {
	summaries, err := h.docService.ListDocuments(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, summaries)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	docID, err := parseUintParam(c, "id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	var req UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	doc, err := h.docService.UpdateDocument(c.Request.Context(), app.UpdateDocumentInput{
		ID:       docID,
		Title:    req.Title,
		Category: req.Category,
		Tags:     req.Tags,
	})
	if err != nil {
		respondServiceError(c, err, "update document failed")
		return
	}

	response.OK(c, gin.H{
		"id":       doc.ID,
		"title":    doc.Title,
		"category": doc.Category,
		"tags":     doc.TagList(),
	})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, err := parseUintParam(c, "id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.docService.DeleteDocument(c.Request.Context(), docID); err != nil {
		respondServiceError(c, err, "delete document failed")
		return
	}

	response.OK(c, gin.H{"deleted_document_id": docID})
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	return uint(u), err
}

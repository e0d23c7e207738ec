package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"ragchat/internal/ai"
	"ragchat/internal/app"
	"ragchat/internal/pkg/pdfextract"
	"ragchat/internal/rag"
	"ragchat/internal/transport/http/response"
)

type RAGHandler struct {
	ragService    *app.RAGService
	maxUploadSize int64
}

type AskRequest struct {
	Question   string `json:"question" binding:"required"`
	DocumentID uint   `json:"document_id"`
}

type SummarizeRequest struct {
	DocumentID uint `json:"document_id"`
}

type SimilarityRequest struct {
	Text       string `json:"text" binding:"required"`
	DocumentID uint   `json:"document_id"`
}

func NewRAGHandler(ragService *app.RAGService, maxUploadMB int) *RAGHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &RAGHandler{
		ragService:    ragService,
		maxUploadSize: int64(maxUploadMB) << 20,
	}
}

// respondServiceError maps the service error taxonomy onto HTTP statuses and
// business codes.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrCorpusEmpty):
		response.Error(c, http.StatusBadRequest, response.CodeCorpusEmpty, err.Error())
	case errors.Is(err, app.ErrDocumentNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ai.ErrUnavailable):
		response.Error(c, http.StatusBadGateway, response.CodeProviderUnavailable, err.Error())
	case errors.Is(err, rag.ErrDimensionMismatch):
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

// Upload accepts a multipart form with "file" (PDF) plus optional "title",
// "category" and comma-separated "tags", extracts the text and indexes it.
func (h *RAGHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > h.maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF files are allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	text, err := pdfextract.ExtractText(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to extract text from PDF: "+err.Error())
		return
	}

	var tags []string
	if raw := strings.TrimSpace(c.PostForm("tags")); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	result, err := h.ragService.Ingest(c.Request.Context(), app.IngestInput{
		Title:        c.PostForm("title"),
		OriginalName: file.Filename,
		Category:     c.PostForm("category"),
		Tags:         tags,
		Text:         text,
	})
	if err != nil {
		respondServiceError(c, err, "ingest failed")
		return
	}

	response.OK(c, gin.H{
		"document_id": result.Document.ID,
		"chunk_count": result.ChunkCount,
	})
}

func (h *RAGHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "question is required")
		return
	}

	result, err := h.ragService.Ask(c.Request.Context(), app.AskInput{
		Question:   req.Question,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		respondServiceError(c, err, "ask failed")
		return
	}

	response.OK(c, result)
}

func (h *RAGHandler) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.ragService.Summarize(c.Request.Context(), app.SummarizeInput{
		DocumentID: req.DocumentID,
	})
	if err != nil {
		respondServiceError(c, err, "summarize failed")
		return
	}

	response.OK(c, result)
}

func (h *RAGHandler) CheckSimilarity(c *gin.Context) {
	var req SimilarityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "text is required")
		return
	}

	result, err := h.ragService.CheckSimilarity(c.Request.Context(), app.SimilarityInput{
		Text:       req.Text,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		respondServiceError(c, err, "similarity check failed")
		return
	}

	response.OK(c, result)
}

// Package api exposes the assistant over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/puran2003gupta/ragassist/internal/domain"
	"github.com/puran2003gupta/ragassist/internal/service"
)

// Handler handles assistant API requests
type Handler struct {
	askService    *service.AskService
	ingestService *service.IngestService
}

// NewHandler creates a new handler
func NewHandler(askService *service.AskService, ingestService *service.IngestService) *Handler {
	return &Handler{
		askService:    askService,
		ingestService: ingestService,
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "ragassist is running"})
}

// Ask answers a question with optional history and conversation tracking.
func (h *Handler) Ask(c *gin.Context) {
	var req domain.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.answer(c, &req)
}

// AskCompat answers a bare question from a query parameter, without history.
func (h *Handler) AskCompat(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}
	h.answer(c, &domain.AskRequest{Query: query})
}

func (h *Handler) answer(c *gin.Context, req *domain.AskRequest) {
	resp, err := h.askService.Ask(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// IngestPDF accepts a multipart PDF upload and indexes it.
func (h *Handler) IngestPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	count, err := h.ingestService.IngestPDF(c.Request.Context(), file.Filename, src)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrExtraction) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, domain.IngestResponse{Status: "ok", Chunks: count})
}

// IngestURL fetches a web page and indexes it.
func (h *Handler) IngestURL(c *gin.Context) {
	url := c.PostForm("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing form field url"})
		return
	}

	count, err := h.ingestService.IngestURL(c.Request.Context(), url)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrExtraction) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, domain.IngestResponse{Status: "ok", Chunks: count})
}

// SaveChat stores a client-supplied history as a new conversation.
func (h *Handler) SaveChat(c *gin.Context) {
	var req domain.SaveChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.askService.SaveChat(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conv.ID, "name": conv.Name})
}

// LoadChat returns a stored conversation with its history.
func (h *Handler) LoadChat(c *gin.Context) {
	id := c.Query("conversation_id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter conversation_id"})
		return
	}

	conv, err := h.askService.LoadChat(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, conv)
}

// ListChats returns metadata for all stored conversations.
func (h *Handler) ListChats(c *gin.Context) {
	infos, err := h.askService.ListChats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": infos})
}

// DeleteChat removes a stored conversation.
func (h *Handler) DeleteChat(c *gin.Context) {
	id := c.Query("conversation_id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter conversation_id"})
		return
	}

	if err := h.askService.DeleteChat(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

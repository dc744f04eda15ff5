package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/docbridge/internal/events"
	"github.com/jonesrussell/docbridge/internal/logger"
	"github.com/jonesrussell/docbridge/internal/models"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListDocuments handles GET /api/documents.
func (h *Handler) ListDocuments(c *gin.Context) {
	docType := models.DocumentType(c.Query("type"))
	if docType != "" && !docType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown document type"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	docs, err := h.docs.List(c.Request.Context(), docType, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "limit": limit, "offset": offset})
}

// GetDocument handles GET /api/documents/:id.
func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.docs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// DownloadDocument handles GET /api/documents/:id/download and streams
// the stored content blob.
func (h *Handler) DownloadDocument(c *gin.Context) {
	doc, err := h.docs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	content, err := h.store.Get(c.Request.Context(), doc.ObjectKey)
	if err != nil {
		h.log.Error("fetch content blob",
			logger.DocumentID(doc.ID), logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "document content unavailable"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", content)
}

// DeleteDocument handles DELETE /api/documents/:id. The row goes first;
// a leftover blob is harmless and cheaper than a missing row.
func (h *Handler) DeleteDocument(c *gin.Context) {
	id := c.Param("id")

	doc, err := h.docs.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.docs.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.Remove(c.Request.Context(), doc.ObjectKey); err != nil {
		h.log.Warn("remove content blob",
			logger.DocumentID(id), logger.Error(err))
	}

	h.events.PublishAsync(events.StreamDocumentDeleted, map[string]any{
		"document_id": id,
		"type":        string(doc.DocumentType),
	})
	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/docbridge/internal/urldetect"
)

type confluencePullRequest struct {
	PageID string `json:"page_id"`
	URL    string `json:"url"`
	attachRequest
}

// ConfluencePull handles POST /api/confluence/pull. The page can be
// named directly by id or by its URL.
func (h *Handler) ConfluencePull(c *gin.Context) {
	var req confluencePullRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.PageID == "" && req.URL == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_id or url is required"})
		return
	}

	pageID := req.PageID
	if pageID == "" {
		detection := urldetect.Detect(req.URL)
		if detection.Kind != urldetect.KindConfluence {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url is not a confluence page"})
			return
		}
		pageID = detection.Identifier
	}
	if pageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url carries no page id"})
		return
	}

	doc, err := h.importer.ImportConfluencePage(c.Request.Context(), pageID, req.URL, req.attach())
	h.respondImported(c, doc, err)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type searchRequest struct {
	JQL string `json:"jql" binding:"required"`
	attachRequest
}

// SearchImport handles POST /api/jira/search: one document per issue
// the query matches.
func (h *Handler) SearchImport(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jql is required"})
		return
	}

	result, err := h.importer.ImportSearch(c.Request.Context(), req.JQL, req.attach())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ProjectImport handles POST /api/jira/projects/:key/import. The body
// is optional and only carries the attach association.
func (h *Handler) ProjectImport(c *gin.Context) {
	var req attachRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.importer.ImportProjectIssues(c.Request.Context(), c.Param("key"), req.attach())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetIssueInfo handles GET /api/jira/issues/:key without importing.
func (h *Handler) GetIssueInfo(c *gin.Context) {
	if !h.jira.Configured() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jira credentials not configured"})
		return
	}

	issue, err := h.jira.GetIssue(c.Request.Context(), c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// MarkIssueDone handles POST /api/jira/issues/:key/done.
func (h *Handler) MarkIssueDone(c *gin.Context) {
	if !h.jira.Configured() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jira credentials not configured"})
		return
	}

	key := c.Param("key")
	transition, err := h.jira.MarkDone(c.Request.Context(), key, h.doneKeywords)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": key, "transition": transition})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonesrussell/docbridge/internal/models"
)

type projectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	JiraKey     string `json:"jira_key"`
}

// CreateProject handles POST /api/projects.
func (h *Handler) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	project := &models.Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		JiraKey:     req.JiraKey,
	}
	if err := h.projects.Create(c.Request.Context(), project); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// ListProjects handles GET /api/projects.
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject handles GET /api/projects/:id.
func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.projects.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// ProjectDocuments handles GET /api/projects/:id/documents.
func (h *Handler) ProjectDocuments(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.projects.GetByID(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	docs, err := h.docs.ListByProject(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// DeleteProject handles DELETE /api/projects/:id.
func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}

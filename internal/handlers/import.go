package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/docbridge/internal/importer"
	"github.com/jonesrussell/docbridge/internal/urldetect"
)

// maxUploadSize bounds file uploads at 50 MiB.
const maxUploadSize = 50 << 20

// attachRequest is the optional project/meeting association a request
// can carry alongside its payload.
type attachRequest struct {
	ProjectID string `json:"project_id"`
	MeetingID string `json:"meeting_id"`
}

func (r attachRequest) attach() importer.Attach {
	return importer.Attach{ProjectID: r.ProjectID, MeetingID: r.MeetingID}
}

type urlRequest struct {
	URL string `json:"url" binding:"required"`
	attachRequest
}

// ImportURL handles POST /api/import/url.
func (h *Handler) ImportURL(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	doc, err := h.importer.ImportURL(c.Request.Context(), req.URL, req.attach())
	h.respondImported(c, doc, err)
}

// ImportFile handles POST /api/import/file (multipart form).
func (h *Handler) ImportFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds %d byte limit", maxUploadSize),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		h.respondError(c, err)
		return
	}

	att := importer.Attach{
		ProjectID: c.PostForm("project_id"),
		MeetingID: c.PostForm("meeting_id"),
	}
	doc, err := h.importer.ImportFile(c.Request.Context(),
		fileHeader.Filename, c.PostForm("title"),
		fileHeader.Header.Get("Content-Type"), data, att)
	h.respondImported(c, doc, err)
}

type textRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	attachRequest
}

// ImportText handles POST /api/import/text.
func (h *Handler) ImportText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}

	doc, err := h.importer.ImportText(c.Request.Context(), req.Title, req.Content, req.attach())
	h.respondImported(c, doc, err)
}

// DetectURL handles POST /api/detect-url. It classifies without
// importing, so frontends can preview what an import would do.
func (h *Handler) DetectURL(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	detection := urldetect.Detect(req.URL)
	resp := gin.H{
		"kind":       detection.Kind,
		"identifier": detection.Identifier,
		"supported":  detection.Kind != urldetect.KindUnknown,
	}
	if detection.BoardID != "" {
		resp["board_id"] = detection.BoardID
	}
	c.JSON(http.StatusOK, resp)
}

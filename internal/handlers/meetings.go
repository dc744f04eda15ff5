package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonesrussell/docbridge/internal/events"
	"github.com/jonesrussell/docbridge/internal/logger"
	"github.com/jonesrussell/docbridge/internal/models"
)

type meetingRequest struct {
	Title       string         `json:"title" binding:"required"`
	MeetingType string         `json:"meeting_type" binding:"required"`
	ScheduledAt time.Time      `json:"scheduled_at" binding:"required"`
	ProjectID   string         `json:"project_id"`
	Metadata    models.JSONMap `json:"metadata"`
}

// CreateMeeting handles POST /api/meetings. When calendar sync is
// enabled the meeting is mirrored as a calendar event.
func (h *Handler) CreateMeeting(c *gin.Context) {
	var req meetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, meeting_type, and scheduled_at are required"})
		return
	}

	meeting := &models.Meeting{
		ID:          uuid.NewString(),
		Title:       req.Title,
		MeetingType: req.MeetingType,
		ScheduledAt: req.ScheduledAt,
		ProjectID:   req.ProjectID,
		Metadata:    req.Metadata,
	}

	if h.calendar.Enabled() {
		eventID, err := h.calendar.CreateEvent(c.Request.Context(), meeting)
		if err != nil {
			// Calendar is a mirror, not the source of truth.
			h.log.Warn("calendar event creation failed",
				logger.String("meeting", meeting.Title), logger.Error(err))
		}
		meeting.EventID = eventID
	}

	if err := h.meetings.Create(c.Request.Context(), meeting); err != nil {
		h.respondError(c, err)
		return
	}

	h.events.PublishAsync(events.StreamMeetingCreated, map[string]any{
		"meeting_id": meeting.ID,
		"type":       meeting.MeetingType,
	})
	c.JSON(http.StatusCreated, gin.H{"meeting": meeting})
}

// ListMeetings handles GET /api/meetings with an optional type filter.
func (h *Handler) ListMeetings(c *gin.Context) {
	meetings, err := h.meetings.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if meetings == nil {
		meetings = []*models.Meeting{}
	}
	c.JSON(http.StatusOK, gin.H{"meetings": meetings})
}

// GetMeeting handles GET /api/meetings/:id.
func (h *Handler) GetMeeting(c *gin.Context) {
	meeting, err := h.meetings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meeting": meeting})
}

// UpdateMeeting handles PUT /api/meetings/:id.
func (h *Handler) UpdateMeeting(c *gin.Context) {
	meeting, err := h.meetings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req meetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, meeting_type, and scheduled_at are required"})
		return
	}

	meeting.Title = req.Title
	meeting.MeetingType = req.MeetingType
	meeting.ScheduledAt = req.ScheduledAt
	meeting.ProjectID = req.ProjectID
	if req.Metadata != nil {
		meeting.Metadata = req.Metadata
	}

	if err := h.meetings.Update(c.Request.Context(), meeting); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meeting": meeting})
}

// DeleteMeeting handles DELETE /api/meetings/:id and removes any
// mirrored calendar event.
func (h *Handler) DeleteMeeting(c *gin.Context) {
	meeting, err := h.meetings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.meetings.Delete(c.Request.Context(), meeting.ID); err != nil {
		h.respondError(c, err)
		return
	}
	_ = h.calendar.DeleteEvent(c.Request.Context(), meeting.EventID)

	c.JSON(http.StatusOK, gin.H{"message": "meeting deleted"})
}

// LinkMeetingDocument handles POST /api/meetings/:id/documents/:docID.
func (h *Handler) LinkMeetingDocument(c *gin.Context) {
	meetingID := c.Param("id")
	documentID := c.Param("docID")

	if _, err := h.meetings.GetByID(c.Request.Context(), meetingID); err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := h.docs.GetByID(c.Request.Context(), documentID); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.meetings.LinkDocument(c.Request.Context(), meetingID, documentID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "document linked"})
}

// UnlinkMeetingDocument handles DELETE /api/meetings/:id/documents/:docID.
func (h *Handler) UnlinkMeetingDocument(c *gin.Context) {
	err := h.meetings.UnlinkDocument(c.Request.Context(), c.Param("id"), c.Param("docID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "document unlinked"})
}

// MeetingDocuments handles GET /api/meetings/:id/documents.
func (h *Handler) MeetingDocuments(c *gin.Context) {
	docs, err := h.meetings.Documents(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// NarrateMeeting handles POST /api/meetings/:id/narrate: it gathers the
// meeting's document contents, asks the narration service for a summary,
// and stores the result in the meeting metadata.
func (h *Handler) NarrateMeeting(c *gin.Context) {
	if !h.narration.Enabled() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "narration is not enabled"})
		return
	}

	meeting, err := h.meetings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	docs, err := h.meetings.Documents(c.Request.Context(), meeting.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		content, err := h.store.Get(c.Request.Context(), doc.ObjectKey)
		if err != nil {
			h.log.Warn("skip document without content",
				logger.DocumentID(doc.ID), logger.Error(err))
			continue
		}
		contents = append(contents, string(content))
	}

	narrationText, err := h.narration.Narrate(c.Request.Context(), meeting.Title, contents)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if meeting.Metadata == nil {
		meeting.Metadata = models.JSONMap{}
	}
	meeting.Metadata["narration"] = narrationText
	meeting.Metadata["narrated_at"] = time.Now().UTC().Format(time.RFC3339)
	if err := h.meetings.Update(c.Request.Context(), meeting); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"narration": narrationText})
}

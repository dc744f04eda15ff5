// Package handlers implements the HTTP API on top of the importer,
// repositories, and object store.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/docbridge/internal/calendar"
	"github.com/jonesrussell/docbridge/internal/events"
	"github.com/jonesrussell/docbridge/internal/importer"
	"github.com/jonesrussell/docbridge/internal/jira"
	"github.com/jonesrussell/docbridge/internal/logger"
	"github.com/jonesrussell/docbridge/internal/models"
	"github.com/jonesrussell/docbridge/internal/narration"
	"github.com/jonesrussell/docbridge/internal/repository"
	"github.com/jonesrussell/docbridge/internal/storage"
)

// ImportService is the importer surface the handlers call.
type ImportService interface {
	ImportURL(ctx context.Context, url string, att importer.Attach) (*models.Document, error)
	ImportFile(ctx context.Context, filename, title, mediaType string, data []byte, att importer.Attach) (*models.Document, error)
	ImportText(ctx context.Context, title, content string, att importer.Attach) (*models.Document, error)
	ImportConfluencePage(ctx context.Context, pageID, sourceURL string, att importer.Attach) (*models.Document, error)
	ImportJiraIssue(ctx context.Context, key, sourceURL string, att importer.Attach) (*models.Document, error)
	ImportSearch(ctx context.Context, jql string, att importer.Attach) (*importer.BatchResult, error)
	ImportProjectIssues(ctx context.Context, projectKey string, att importer.Attach) (*importer.BatchResult, error)
}

// DocumentStore is the repository surface the handlers call.
type DocumentStore interface {
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, docType models.DocumentType, limit, offset int) ([]*models.Document, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.Document, error)
	Delete(ctx context.Context, id string) error
}

// MeetingStore is the meeting repository surface the handlers call.
type MeetingStore interface {
	Create(ctx context.Context, m *models.Meeting) error
	GetByID(ctx context.Context, id string) (*models.Meeting, error)
	List(ctx context.Context, meetingType string) ([]*models.Meeting, error)
	Update(ctx context.Context, m *models.Meeting) error
	Delete(ctx context.Context, id string) error
	LinkDocument(ctx context.Context, meetingID, documentID string) error
	UnlinkDocument(ctx context.Context, meetingID, documentID string) error
	Documents(ctx context.Context, meetingID string) ([]*models.Document, error)
}

// ProjectStore is the project repository surface the handlers call.
type ProjectStore interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Delete(ctx context.Context, id string) error
}

// JiraAdmin is the workflow surface the handlers call directly.
type JiraAdmin interface {
	Configured() bool
	GetIssue(ctx context.Context, key string) (*jira.Issue, error)
	MarkDone(ctx context.Context, key string, keywords []string) (string, error)
}

type Handler struct {
	importer       ImportService
	docs           DocumentStore
	meetings       MeetingStore
	projects       ProjectStore
	store          storage.ObjectStore
	jira           JiraAdmin
	events         *events.Publisher
	calendar       *calendar.Sync
	narration      *narration.Client
	doneKeywords   []string
	log            logger.Logger
}

func New(
	imp ImportService,
	docs DocumentStore,
	meetings MeetingStore,
	projects ProjectStore,
	store storage.ObjectStore,
	jiraClient JiraAdmin,
	publisher *events.Publisher,
	calendarSync *calendar.Sync,
	narrationClient *narration.Client,
	doneKeywords []string,
	log logger.Logger,
) *Handler {
	return &Handler{
		importer:     imp,
		docs:         docs,
		meetings:     meetings,
		projects:     projects,
		store:        store,
		jira:         jiraClient,
		events:       publisher,
		calendar:     calendarSync,
		narration:    narrationClient,
		doneKeywords: doneKeywords,
		log:          log,
	}
}

// respondError maps the importer and repository error taxonomy to HTTP
// status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, importer.ErrInvalidSource):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, importer.ErrSourceUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.log.Error("request failed",
			logger.String("path", c.FullPath()), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondImported handles the partial-persistence case: the document
// row exists, so the import is reported as created with a warning.
func (h *Handler) respondImported(c *gin.Context, doc *models.Document, err error) {
	if err != nil {
		if errors.Is(err, importer.ErrPersistencePartial) {
			c.JSON(http.StatusCreated, gin.H{
				"document": doc,
				"warning":  "content blob could not be stored; re-import to retry",
			})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

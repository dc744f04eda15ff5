// Package importer orchestrates the import pipeline: classify the
// source, fetch and extract content, normalize it, and persist the
// result to Postgres and object storage.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/docbridge/internal/confluence"
	"github.com/jonesrussell/docbridge/internal/events"
	"github.com/jonesrussell/docbridge/internal/extract"
	"github.com/jonesrussell/docbridge/internal/jira"
	"github.com/jonesrussell/docbridge/internal/logger"
	"github.com/jonesrussell/docbridge/internal/metrics"
	"github.com/jonesrussell/docbridge/internal/models"
	"github.com/jonesrussell/docbridge/internal/normalize"
	"github.com/jonesrussell/docbridge/internal/storage"
	"github.com/jonesrussell/docbridge/internal/urldetect"
)

var (
	// ErrInvalidSource means the input cannot be classified or the
	// required client is not configured. Maps to a 400.
	ErrInvalidSource = errors.New("invalid source")

	// ErrSourceUnavailable means the upstream system rejected or
	// failed the fetch. Maps to a 502.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrPersistencePartial means the database row exists but the
	// content blob could not be written. The import still counts: the
	// row is the source of truth and content can be re-fetched.
	ErrPersistencePartial = errors.New("content blob not stored")
)

// Attach names the project and/or meeting an imported document should
// be filed under. The zero value attaches to nothing.
type Attach struct {
	ProjectID string
	MeetingID string
}

// DocumentCreator is the slice of the repository the importer needs.
type DocumentCreator interface {
	Create(ctx context.Context, d *models.Document) error
}

// JiraFetcher is the slice of the JIRA client the importer needs.
type JiraFetcher interface {
	Configured() bool
	GetIssue(ctx context.Context, key string) (*jira.Issue, error)
	GetComments(ctx context.Context, key string) ([]jira.Comment, error)
	SearchIssues(ctx context.Context, jql string) ([]jira.Issue, error)
	GetProject(ctx context.Context, key string) (*jira.Project, error)
	FindEpicLinkField(ctx context.Context) (string, error)
}

// ConfluenceFetcher is the slice of the Confluence client the importer needs.
type ConfluenceFetcher interface {
	Configured() bool
	GetPage(ctx context.Context, pageID string) (*confluence.Page, error)
}

type Service struct {
	docs       DocumentCreator
	store      storage.ObjectStore
	jira       JiraFetcher
	confluence ConfluenceFetcher
	events     *events.Publisher
	log        logger.Logger
}

func NewService(
	docs DocumentCreator,
	store storage.ObjectStore,
	jiraClient JiraFetcher,
	confluenceClient ConfluenceFetcher,
	publisher *events.Publisher,
	log logger.Logger,
) *Service {
	return &Service{
		docs:       docs,
		store:      store,
		jira:       jiraClient,
		confluence: confluenceClient,
		events:     publisher,
		log:        log,
	}
}

// ImportURL classifies url and imports whatever it points at.
func (s *Service) ImportURL(ctx context.Context, url string, att Attach) (*models.Document, error) {
	detection := urldetect.Detect(url)
	switch detection.Kind {
	case urldetect.KindConfluence:
		if detection.Identifier == "" {
			return nil, fmt.Errorf("%w: confluence url %q carries no page id", ErrInvalidSource, url)
		}
		return s.ImportConfluencePage(ctx, detection.Identifier, url, att)
	case urldetect.KindJiraIssue:
		return s.ImportJiraIssue(ctx, detection.Identifier, url, att)
	case urldetect.KindJiraBoard:
		if detection.Identifier == "" {
			return nil, fmt.Errorf("%w: board url %q carries no project key", ErrInvalidSource, url)
		}
		return s.ImportJiraBoard(ctx, detection.Identifier, detection.BoardID, url, att)
	default:
		return nil, fmt.Errorf("%w: unrecognized url %q", ErrInvalidSource, url)
	}
}

// ImportFile extracts text from an uploaded file and persists it. The
// media type the client declared drives extraction; the extension is
// the fallback.
func (s *Service) ImportFile(ctx context.Context, filename, title, mediaType string, data []byte, att Attach) (*models.Document, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidSource)
	}
	start := time.Now()

	res := extract.Extract(data, mediaType, filename)
	metrics.ExtractionsTotal.WithLabelValues(res.Method).Inc()

	doc, err := s.persist(ctx, normalize.FromFile(filename, title, res), att)
	s.observe("file", start, err)
	return doc, err
}

// ImportText persists pasted text as a document.
func (s *Service) ImportText(ctx context.Context, title, content string, att Attach) (*models.Document, error) {
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrInvalidSource)
	}
	start := time.Now()

	doc, err := s.persist(ctx, normalize.FromText(title, content), att)
	s.observe("text", start, err)
	return doc, err
}

// ImportConfluencePage fetches one page and persists it.
func (s *Service) ImportConfluencePage(ctx context.Context, pageID, sourceURL string, att Attach) (*models.Document, error) {
	if !s.confluence.Configured() {
		return nil, fmt.Errorf("%w: confluence credentials not configured", ErrInvalidSource)
	}
	start := time.Now()

	page, err := s.confluence.GetPage(ctx, pageID)
	if err != nil {
		s.observe("confluence", start, err)
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	doc, err := s.persist(ctx, normalize.FromConfluence(page, sourceURL), att)
	s.observe("confluence", start, err)
	return doc, err
}

// ImportJiraIssue fetches an issue with its comments and persists it.
func (s *Service) ImportJiraIssue(ctx context.Context, key, sourceURL string, att Attach) (*models.Document, error) {
	if !s.jira.Configured() {
		return nil, fmt.Errorf("%w: jira credentials not configured", ErrInvalidSource)
	}
	start := time.Now()

	issue, err := s.jira.GetIssue(ctx, key)
	if err != nil {
		s.observe("jira", start, err)
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	comments, err := s.jira.GetComments(ctx, key)
	if err != nil {
		// Comments enrich the document but are not worth failing over.
		s.log.Warn("fetch comments failed",
			logger.String("issue", key), logger.Error(err))
		comments = nil
	}

	doc, err := s.persist(ctx, normalize.FromJiraIssue(issue, comments, sourceURL), att)
	s.observe("jira", start, err)
	return doc, err
}

// ImportJiraBoard fetches every issue in a project, each with its
// subtasks and comments, and persists them as a single board document.
// Each issue fetch is isolated: a failure is logged and the issue
// skipped, so one bad issue cannot sink the whole board.
func (s *Service) ImportJiraBoard(ctx context.Context, projectKey, boardID, sourceURL string, att Attach) (*models.Document, error) {
	if !s.jira.Configured() {
		return nil, fmt.Errorf("%w: jira credentials not configured", ErrInvalidSource)
	}
	start := time.Now()

	project, err := s.jira.GetProject(ctx, projectKey)
	if err != nil {
		s.observe("jira_board", start, err)
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	found, err := s.jira.SearchIssues(ctx, fmt.Sprintf("project = %s ORDER BY created DESC", projectKey))
	if err != nil {
		s.observe("jira_board", start, err)
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	items := make([]normalize.BoardIssue, 0, len(found))
	for _, hit := range found {
		issue, err := s.jira.GetIssue(ctx, hit.Key)
		if err != nil {
			s.log.Warn("board issue fetch failed",
				logger.String("issue", hit.Key), logger.Error(err))
			continue
		}
		comments, err := s.jira.GetComments(ctx, hit.Key)
		if err != nil {
			s.log.Warn("board issue comments fetch failed",
				logger.String("issue", hit.Key), logger.Error(err))
			comments = nil
		}
		items = append(items, normalize.BoardIssue{Issue: issue, Comments: comments})
	}

	env := normalize.FromJiraBoard(project, boardID, items, sourceURL, time.Now())
	if epicField, err := s.jira.FindEpicLinkField(ctx); err != nil {
		s.log.Warn("epic field discovery failed", logger.Error(err))
	} else if epicField != "" {
		env.Metadata["epic_link_field"] = epicField
	}

	doc, err := s.persist(ctx, env, att)
	s.observe("jira_board", start, err)
	return doc, err
}

// persist writes the database row, then the content blob. A blob
// failure does not roll the row back: the row is authoritative and the
// content can be re-imported from the source.
func (s *Service) persist(ctx context.Context, env normalize.Envelope, att Attach) (*models.Document, error) {
	content := []byte(env.Content)
	doc := &models.Document{
		ID:           uuid.NewString(),
		Title:        env.Title,
		Filename:     env.Filename,
		DocumentType: env.DocumentType,
		SourceID:     env.SourceID,
		SourceURL:    env.SourceURL,
		ProjectID:    att.ProjectID,
		MeetingID:    att.MeetingID,
		ContentSize:  int64(len(content)),
		Metadata:     env.Metadata,
	}
	doc.ObjectKey = storage.ObjectKey(doc.ID, doc.Filename)

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist document: %w", err)
	}

	if err := s.store.Put(ctx, doc.ObjectKey, content, "text/plain"); err != nil {
		s.log.Error("store content blob",
			logger.DocumentID(doc.ID),
			logger.String("object_key", doc.ObjectKey),
			logger.Error(err))
		return doc, fmt.Errorf("%w: %v", ErrPersistencePartial, err)
	}

	s.log.Info("document imported",
		logger.DocumentID(doc.ID),
		logger.String("type", string(doc.DocumentType)),
		logger.String("filename", doc.Filename),
		logger.Int64("size", doc.ContentSize))

	s.events.PublishAsync(events.StreamDocumentImported, map[string]any{
		"document_id": doc.ID,
		"type":        string(doc.DocumentType),
		"title":       doc.Title,
		"source_id":   doc.SourceID,
	})
	return doc, nil
}

func (s *Service) observe(sourceType string, start time.Time, err error) {
	outcome := "success"
	if err != nil && !errors.Is(err, ErrPersistencePartial) {
		outcome = "failure"
	}
	metrics.ImportsTotal.WithLabelValues(sourceType, outcome).Inc()
	metrics.ImportDuration.WithLabelValues(sourceType).Observe(time.Since(start).Seconds())
}

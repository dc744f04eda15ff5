package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/docbridge/internal/calendar"
	"github.com/jonesrussell/docbridge/internal/config"
	"github.com/jonesrussell/docbridge/internal/events"
	"github.com/jonesrussell/docbridge/internal/importer"
	"github.com/jonesrussell/docbridge/internal/jira"
	"github.com/jonesrussell/docbridge/internal/logger"
	"github.com/jonesrussell/docbridge/internal/models"
	"github.com/jonesrussell/docbridge/internal/narration"
	"github.com/jonesrussell/docbridge/internal/repository"
	"github.com/jonesrussell/docbridge/internal/testhelpers"
)

type fakeImporter struct {
	doc        *models.Document
	batch      *importer.BatchResult
	err        error
	lastURL    string
	lastJQL    string
	lastText   string
	lastAttach importer.Attach
}

func (f *fakeImporter) ImportURL(_ context.Context, url string, att importer.Attach) (*models.Document, error) {
	f.lastURL = url
	f.lastAttach = att
	return f.doc, f.err
}

func (f *fakeImporter) ImportFile(_ context.Context, _, _, _ string, _ []byte, att importer.Attach) (*models.Document, error) {
	f.lastAttach = att
	return f.doc, f.err
}

func (f *fakeImporter) ImportText(_ context.Context, _, content string, att importer.Attach) (*models.Document, error) {
	f.lastText = content
	f.lastAttach = att
	return f.doc, f.err
}

func (f *fakeImporter) ImportConfluencePage(_ context.Context, _, _ string, att importer.Attach) (*models.Document, error) {
	f.lastAttach = att
	return f.doc, f.err
}

func (f *fakeImporter) ImportJiraIssue(_ context.Context, _, _ string, att importer.Attach) (*models.Document, error) {
	f.lastAttach = att
	return f.doc, f.err
}

func (f *fakeImporter) ImportSearch(_ context.Context, jql string, att importer.Attach) (*importer.BatchResult, error) {
	f.lastJQL = jql
	f.lastAttach = att
	return f.batch, f.err
}

func (f *fakeImporter) ImportProjectIssues(_ context.Context, key string, att importer.Attach) (*importer.BatchResult, error) {
	f.lastJQL = "project = " + key
	f.lastAttach = att
	return f.batch, f.err
}

type fakeDocStore struct {
	docs map[string]*models.Document
}

func (f *fakeDocStore) GetByID(_ context.Context, id string) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return doc, nil
}

func (f *fakeDocStore) List(_ context.Context, docType models.DocumentType, _, _ int) ([]*models.Document, error) {
	var out []*models.Document
	for _, d := range f.docs {
		if docType == "" || d.DocumentType == docType {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocStore) ListByProject(_ context.Context, projectID string) ([]*models.Document, error) {
	var out []*models.Document
	for _, d := range f.docs {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocStore) Delete(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.docs, id)
	return nil
}

type fakeMeetingStore struct {
	meetings map[string]*models.Meeting
	links    map[string][]string
	docs     *fakeDocStore
}

func (f *fakeMeetingStore) Create(_ context.Context, m *models.Meeting) error {
	if f.meetings == nil {
		f.meetings = map[string]*models.Meeting{}
	}
	f.meetings[m.ID] = m
	return nil
}

func (f *fakeMeetingStore) GetByID(_ context.Context, id string) (*models.Meeting, error) {
	m, ok := f.meetings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeMeetingStore) List(_ context.Context, meetingType string) ([]*models.Meeting, error) {
	var out []*models.Meeting
	for _, m := range f.meetings {
		if meetingType == "" || m.MeetingType == meetingType {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMeetingStore) Update(_ context.Context, m *models.Meeting) error {
	if _, ok := f.meetings[m.ID]; !ok {
		return repository.ErrNotFound
	}
	f.meetings[m.ID] = m
	return nil
}

func (f *fakeMeetingStore) Delete(_ context.Context, id string) error {
	if _, ok := f.meetings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.meetings, id)
	return nil
}

func (f *fakeMeetingStore) LinkDocument(_ context.Context, meetingID, documentID string) error {
	if f.links == nil {
		f.links = map[string][]string{}
	}
	f.links[meetingID] = append(f.links[meetingID], documentID)
	return nil
}

func (f *fakeMeetingStore) UnlinkDocument(_ context.Context, meetingID, documentID string) error {
	for i, id := range f.links[meetingID] {
		if id == documentID {
			f.links[meetingID] = append(f.links[meetingID][:i], f.links[meetingID][i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeMeetingStore) Documents(_ context.Context, meetingID string) ([]*models.Document, error) {
	var out []*models.Document
	for _, id := range f.links[meetingID] {
		if d, ok := f.docs.docs[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeProjectStore struct {
	projects map[string]*models.Project
}

func (f *fakeProjectStore) Create(_ context.Context, p *models.Project) error {
	if f.projects == nil {
		f.projects = map[string]*models.Project{}
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjectStore) GetByID(_ context.Context, id string) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjectStore) List(_ context.Context) ([]*models.Project, error) {
	var out []*models.Project
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjectStore) Delete(_ context.Context, id string) error {
	if _, ok := f.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

type fakeBlobStore struct {
	objects map[string][]byte
}

func (f *fakeBlobStore) Put(_ context.Context, key string, content []byte, _ string) error {
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = content
	return nil
}

func (f *fakeBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func (f *fakeBlobStore) Remove(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type fakeJiraAdmin struct {
	configured bool
	issue      *jira.Issue
	transition string
	err        error
}

func (f *fakeJiraAdmin) Configured() bool { return f.configured }

func (f *fakeJiraAdmin) GetIssue(_ context.Context, _ string) (*jira.Issue, error) {
	return f.issue, f.err
}

func (f *fakeJiraAdmin) MarkDone(_ context.Context, _ string, _ []string) (string, error) {
	return f.transition, f.err
}

type fixture struct {
	importer *fakeImporter
	docs     *fakeDocStore
	meetings *fakeMeetingStore
	projects *fakeProjectStore
	blobs    *fakeBlobStore
	jira     *fakeJiraAdmin
	router   *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	nop := logger.NewNopLogger()
	pub, err := events.NewPublisher(context.Background(), config.RedisConfig{}, nop)
	require.NoError(t, err)
	sync, err := calendar.NewSync(context.Background(), config.CalendarConfig{}, nop)
	require.NoError(t, err)

	f := &fixture{
		importer: &fakeImporter{},
		docs:     &fakeDocStore{docs: map[string]*models.Document{}},
		projects: &fakeProjectStore{},
		blobs:    &fakeBlobStore{},
		jira:     &fakeJiraAdmin{},
	}
	f.meetings = &fakeMeetingStore{docs: f.docs, meetings: map[string]*models.Meeting{}}

	h := New(f.importer, f.docs, f.meetings, f.projects, f.blobs, f.jira,
		pub, sync, narration.NewClient(config.NarrationConfig{}, nop),
		[]string{"done", "closed"}, nop)

	router := testhelpers.Router()
	router.POST("/api/import/url", h.ImportURL)
	router.POST("/api/import/text", h.ImportText)
	router.POST("/api/detect-url", h.DetectURL)
	router.GET("/api/documents", h.ListDocuments)
	router.GET("/api/documents/:id", h.GetDocument)
	router.GET("/api/documents/:id/download", h.DownloadDocument)
	router.DELETE("/api/documents/:id", h.DeleteDocument)
	router.POST("/api/jira/search", h.SearchImport)
	router.POST("/api/jira/projects/:key/import", h.ProjectImport)
	router.POST("/api/jira/issues/:key/done", h.MarkIssueDone)
	router.POST("/api/meetings", h.CreateMeeting)
	router.GET("/api/meetings", h.ListMeetings)
	router.GET("/api/meetings/:id", h.GetMeeting)
	router.DELETE("/api/meetings/:id", h.DeleteMeeting)
	router.POST("/api/meetings/:id/documents/:docID", h.LinkMeetingDocument)
	router.GET("/api/meetings/:id/documents", h.MeetingDocuments)
	router.POST("/api/projects", h.CreateProject)
	router.GET("/api/projects", h.ListProjects)
	router.GET("/api/projects/:id/documents", h.ProjectDocuments)
	f.router = router
	return f
}

func sampleDoc(id string) *models.Document {
	return &models.Document{
		ID:           id,
		Title:        "Fix login",
		Filename:     "jira-PROJ-1-Fix-login.txt",
		DocumentType: models.DocumentTypeJira,
		ObjectKey:    id + "_jira-PROJ-1-Fix-login.txt",
	}
}

func TestImportURLEndpoint(t *testing.T) {
	f := newFixture(t)
	f.importer.doc = sampleDoc("doc-1")

	w := testhelpers.PerformJSON(t, f.router, "POST", "/api/import/url",
		gin.H{"url": "https://acme.atlassian.net/browse/PROJ-1"})

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "https://acme.atlassian.net/browse/PROJ-1", f.importer.lastURL)

	var resp struct {
		Document models.Document `json:"document"`
	}
	testhelpers.DecodeJSON(t, w, &resp)
	assert.Equal(t, "doc-1", resp.Document.ID)
}

func TestImportURLEndpointAttach(t *testing.T) {
	f := newFixture(t)
	f.importer.doc = sampleDoc("doc-1")

	w := testhelpers.PerformJSON(t, f.router, "POST", "/api/import/url",
		gin.H{
			"url":        "https://acme.atlassian.net/browse/PROJ-1",
			"project_id": "proj-9",
			"meeting_id": "meet-3",
		})

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "proj-9", f.importer.lastAttach.ProjectID)
	assert.Equal(t, "meet-3", f.importer.lastAttach.MeetingID)
}

func TestImportURLEndpointErrors(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		f := newFixture(t)
		w := testhelpers.PerformJSON(t, f.router, "POST", "/api/import/url", gin.H{})
		assert.Equal(t, 400, w.Code)
	})

	t.Run("invalid source maps to 400", func(t *testing.T) {
		f := newFixture(t)
		f.importer.err = fmt.Errorf("%w: nope", importer.ErrInvalidSource)
		w := testhelpers.PerformJSON(t, f.router, "POST", "/api/import/url", gin.H{"url": "https://x"})
		assert.Equal(t, 400, w.Code)
	})

	t.Run("source unavailable maps to 502", func(t *testing.T) {
		f := newFixture(t)
		f.importer.err = fmt.Errorf("%w: jira down", importer.ErrSourceUnavailable)
		w := testhelpers.PerformJSON(t, f.router, "POST", "/api/import/url", gin.H{"url": "https://x"})
		assert.Equal(t, 502, w.Code)
	})

	t.Run("partial persistence still returns 201 with warning", func(t *testing.T) {
		f := newFixture(t)
		f.importer.doc = sampleDoc("doc-1")
		f.importer.err = fmt.Errorf("%w: minio down", importer.ErrPersistencePartial)
		w := testhelpers.PerformJSON(t, f.router, "POST", "/api/import/url", gin.H{"url": "https://x"})

		assert.Equal(t, 201, w.Code)
		var resp struct {
			Warning string `json:"warning"`
		}
		testhelpers.DecodeJSON(t, w, &resp)
		assert.NotEmpty(t, resp.Warning)
	})
}

func TestDetectURLEndpoint(t *testing.T) {
	f := newFixture(t)

	w := testhelpers.PerformJSON(t, f.router, "POST", "/api/detect-url",
		gin.H{"url": "https://acme.atlassian.net/browse/PROJ-1"})

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Kind       string `json:"kind"`
		Identifier string `json:"identifier"`
		Supported  bool   `json:"supported"`
	}
	testhelpers.DecodeJSON(t, w, &resp)
	assert.Equal(t, "jira", resp.Kind)
	assert.Equal(t, "PROJ-1", resp.Identifier)
	assert.True(t, resp.Supported)
}

func TestDetectURLBoardEndpoint(t *testing.T) {
	f := newFixture(t)

	w := testhelpers.PerformJSON(t, f.router, "POST", "/api/detect-url",
		gin.H{"url": "https://acme.atlassian.net/secure/RapidBoard.jspa?rapidView=42"})

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Kind    string `json:"kind"`
		BoardID string `json:"board_id"`
	}
	testhelpers.DecodeJSON(t, w, &resp)
	assert.Equal(t, "jira_board", resp.Kind)
	assert.Equal(t, "42", resp.BoardID)
}

func TestDocumentEndpoints(t *testing.T) {
	f := newFixture(t)
	doc := sampleDoc("doc-1")
	f.docs.docs["doc-1"] = doc
	f.blobs.objects = map[string][]byte{doc.ObjectKey: []byte("issue body")}

	t.Run("get", func(t *testing.T) {
		w := testhelpers.PerformJSON(t, f.router, "GET", "/api/documents/doc-1", nil)
		assert.Equal(t, 200, w.Code)
	})

	t.Run("get missing", func(t *testing.T) {
		w := testhelpers.PerformJSON(t, f.router, "GET", "/api/documents/nope", nil)
		assert.Equal(t, 404, w.Code)
	})

	t.Run("list rejects unknown type", func(t *testing.T) {
		w := testhelpers.PerformJSON(t, f.router, "GET", "/api/documents?type=wiki", nil)
		assert.Equal(t, 400, w.Code)
	})

	t.Run("download", func(t *testing.T) {
		w := testhelpers.PerformJSON(t, f.router, "GET", "/api/documents/doc-1/download", nil)
		assert.Equal(t, 200, w.Code)
		assert.Equal(t, "issue body", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), doc.Filename)
	})

	t.Run("delete removes row and blob", func(t *testing.T) {
		w := testhelpers.PerformJSON(t, f.router, "DELETE", "/api/documents/doc-1", nil)
		assert.Equal(t, 200, w.Code)
		assert.Empty(t, f.docs.docs)
		assert.Empty(t, f.blobs.objects)
	})
}

func TestSearchImportEndpoint(t *testing.T) {
	f := newFixture(t)
	f.importer.batch = &importer.BatchResult{
		Imported:       []*models.Document{sampleDoc("doc-1")},
		DocumentIDs:    []string{"doc-1"},
		Failed:         []importer.BatchFailure{{Key: "PROJ-2", Reason: "fetch failed"}},
		TotalFound:     2,
		ProcessedCount: 1,
		FailedCount:    1,
		Message:        "Imported 1 out of 2 issues",
	}

	w := testhelpers.PerformJSON(t, f.router, "POST", "/api/jira/search",
		gin.H{"jql": "project = PROJ"})

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "project = PROJ", f.importer.lastJQL)

	var resp importer.BatchResult
	testhelpers.DecodeJSON(t, w, &resp)
	assert.Equal(t, "Imported 1 out of 2 issues", resp.Message)
	assert.Equal(t, []string{"doc-1"}, resp.DocumentIDs)
	assert.Equal(t, 2, resp.TotalFound)
	assert.Equal(t, 1, resp.ProcessedCount)
	assert.Equal(t, 1, resp.FailedCount)
	assert.Equal(t, resp.TotalFound, resp.ProcessedCount+resp.FailedCount)
}

func TestMarkIssueDoneEndpoint(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		f := newFixture(t)
		w := testhelpers.PerformJSON(t, f.router, "POST", "/api/jira/issues/PROJ-1/done", nil)
		assert.Equal(t, 400, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		f.jira.configured = true
		f.jira.transition = "Close Issue"
		w := testhelpers.PerformJSON(t, f.router, "POST", "/api/jira/issues/PROJ-1/done", nil)

		assert.Equal(t, 200, w.Code)
		var resp struct {
			Transition string `json:"transition"`
		}
		testhelpers.DecodeJSON(t, w, &resp)
		assert.Equal(t, "Close Issue", resp.Transition)
	})
}

func TestMeetingEndpoints(t *testing.T) {
	f := newFixture(t)

	w := testhelpers.PerformJSON(t, f.router, "POST", "/api/meetings", gin.H{
		"title":        "Sprint Review",
		"meeting_type": "review",
		"scheduled_at": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, 201, w.Code)

	var created struct {
		Meeting models.Meeting `json:"meeting"`
	}
	testhelpers.DecodeJSON(t, w, &created)
	meetingID := created.Meeting.ID
	require.NotEmpty(t, meetingID)

	t.Run("link and list documents", func(t *testing.T) {
		f.docs.docs["doc-1"] = sampleDoc("doc-1")

		w := testhelpers.PerformJSON(t, f.router, "POST",
			"/api/meetings/"+meetingID+"/documents/doc-1", nil)
		assert.Equal(t, 200, w.Code)

		w = testhelpers.PerformJSON(t, f.router, "GET",
			"/api/meetings/"+meetingID+"/documents", nil)
		assert.Equal(t, 200, w.Code)

		var resp struct {
			Documents []models.Document `json:"documents"`
		}
		testhelpers.DecodeJSON(t, w, &resp)
		require.Len(t, resp.Documents, 1)
		assert.Equal(t, "doc-1", resp.Documents[0].ID)
	})

	t.Run("link unknown document is 404", func(t *testing.T) {
		w := testhelpers.PerformJSON(t, f.router, "POST",
			"/api/meetings/"+meetingID+"/documents/ghost", nil)
		assert.Equal(t, 404, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := testhelpers.PerformJSON(t, f.router, "DELETE", "/api/meetings/"+meetingID, nil)
		assert.Equal(t, 200, w.Code)
		assert.Empty(t, f.meetings.meetings)
	})
}

func TestProjectEndpoints(t *testing.T) {
	f := newFixture(t)

	w := testhelpers.PerformJSON(t, f.router, "POST", "/api/projects",
		gin.H{"name": "Checkout", "jira_key": "PROJ"})
	require.Equal(t, 201, w.Code)

	w = testhelpers.PerformJSON(t, f.router, "GET", "/api/projects", nil)
	assert.Equal(t, 200, w.Code)

	var resp struct {
		Projects []models.Project `json:"projects"`
	}
	testhelpers.DecodeJSON(t, w, &resp)
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, "PROJ", resp.Projects[0].JiraKey)
}

func TestProjectDocumentsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.projects.projects = map[string]*models.Project{
		"proj-9": {ID: "proj-9", Name: "Checkout", JiraKey: "PROJ"},
	}
	linked := sampleDoc("doc-1")
	linked.ProjectID = "proj-9"
	f.docs.docs["doc-1"] = linked
	other := sampleDoc("doc-2")
	f.docs.docs["doc-2"] = other

	t.Run("lists only linked documents", func(t *testing.T) {
		w := testhelpers.PerformJSON(t, f.router, "GET", "/api/projects/proj-9/documents", nil)
		assert.Equal(t, 200, w.Code)

		var resp struct {
			Documents []models.Document `json:"documents"`
		}
		testhelpers.DecodeJSON(t, w, &resp)
		require.Len(t, resp.Documents, 1)
		assert.Equal(t, "doc-1", resp.Documents[0].ID)
	})

	t.Run("missing project", func(t *testing.T) {
		w := testhelpers.PerformJSON(t, f.router, "GET", "/api/projects/nope/documents", nil)
		assert.Equal(t, 404, w.Code)
	})
}

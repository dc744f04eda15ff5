package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/docbridge/internal/models"
)

func newMock(t *testing.T) (*sqlmock.Sqlmock, func() *DocumentRepository) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return &mock, func() *DocumentRepository { return NewDocumentRepository(db) }
}

func documentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "filename", "document_type", "source_id", "source_url",
		"project_id", "meeting_id", "object_key", "content_size", "metadata",
		"created_at", "updated_at",
	})
}

func TestDocumentCreate(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	(*mock).ExpectQuery(`(?s)INSERT INTO documents`).
		WithArgs("doc-1", "Fix login", "jira-PROJ-1-Fix-login.txt",
			models.DocumentTypeJira, "PROJ-1", "https://acme.atlassian.net/browse/PROJ-1",
			sqlmock.AnyArg(), sqlmock.AnyArg(),
			"doc-1_jira-PROJ-1-Fix-login.txt", int64(42), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	doc := &models.Document{
		ID:           "doc-1",
		Title:        "Fix login",
		Filename:     "jira-PROJ-1-Fix-login.txt",
		DocumentType: models.DocumentTypeJira,
		SourceID:     "PROJ-1",
		SourceURL:    "https://acme.atlassian.net/browse/PROJ-1",
		ObjectKey:    "doc-1_jira-PROJ-1-Fix-login.txt",
		ContentSize:  42,
		Metadata:     models.JSONMap{"status": "Done"},
	}
	require.NoError(t, repo().Create(context.Background(), doc))
	assert.Equal(t, now, doc.CreatedAt)
}

func TestDocumentCreateWithProject(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	(*mock).ExpectQuery(`(?s)INSERT INTO documents`).
		WithArgs("doc-3", "Roadmap", "roadmap.txt", models.DocumentTypeFile,
			sqlmock.AnyArg(), sqlmock.AnyArg(),
			"proj-9", sqlmock.AnyArg(),
			"doc-3_roadmap.txt", int64(5), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	doc := &models.Document{
		ID:           "doc-3",
		Title:        "Roadmap",
		Filename:     "roadmap.txt",
		DocumentType: models.DocumentTypeFile,
		ProjectID:    "proj-9",
		ObjectKey:    "doc-3_roadmap.txt",
		ContentSize:  5,
	}
	require.NoError(t, repo().Create(context.Background(), doc))
}

func TestDocumentGetByID(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	(*mock).ExpectQuery(`(?s)SELECT .+ FROM documents WHERE id`).
		WithArgs("doc-1").
		WillReturnRows(documentRows().AddRow(
			"doc-1", "Fix login", "f.txt", "jira", "PROJ-1", nil, nil, nil,
			"doc-1_f.txt", int64(42), []byte(`{"status":"Done"}`), now, now))

	doc, err := repo().GetByID(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Fix login", doc.Title)
	assert.Equal(t, "PROJ-1", doc.SourceID)
	assert.Empty(t, doc.SourceURL)
	assert.Empty(t, doc.ProjectID)
	assert.Equal(t, "Done", doc.Metadata["status"])
}

func TestDocumentGetByIDNotFound(t *testing.T) {
	mock, repo := newMock(t)

	(*mock).ExpectQuery(`(?s)SELECT .+ FROM documents WHERE id`).
		WithArgs("missing").
		WillReturnRows(documentRows())

	_, err := repo().GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentListFiltered(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	(*mock).ExpectQuery(`(?s)SELECT .+ FROM documents WHERE document_type .+ ORDER BY created_at DESC`).
		WithArgs("confluence", 20, 0).
		WillReturnRows(documentRows().
			AddRow("doc-2", "Notes", "confluence-1-Notes.txt", "confluence",
				"1", nil, nil, nil, "doc-2_confluence-1-Notes.txt", int64(10), []byte(`{}`), now, now))

	docs, err := repo().List(context.Background(), models.DocumentTypeConfluence, 20, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, models.DocumentTypeConfluence, docs[0].DocumentType)
}

func TestDocumentListByProject(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	(*mock).ExpectQuery(`(?s)SELECT .+ FROM documents.+WHERE project_id .+ ORDER BY created_at DESC`).
		WithArgs("proj-9").
		WillReturnRows(documentRows().
			AddRow("doc-3", "Roadmap", "roadmap.txt", "file", nil, nil, "proj-9", nil,
				"doc-3_roadmap.txt", int64(5), []byte(`{}`), now, now))

	docs, err := repo().ListByProject(context.Background(), "proj-9")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "proj-9", docs[0].ProjectID)
}

func TestDocumentDelete(t *testing.T) {
	mock, repo := newMock(t)

	(*mock).ExpectExec(`DELETE FROM documents`).
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo().Delete(context.Background(), "doc-1"))
}

func TestDocumentDeleteNotFound(t *testing.T) {
	mock, repo := newMock(t)

	(*mock).ExpectExec(`DELETE FROM documents`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo().Delete(context.Background(), "missing"), ErrNotFound)
}

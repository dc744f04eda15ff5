// Package repository implements PostgreSQL persistence for documents,
// meetings, and projects.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/docbridge/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, title, filename, document_type, source_id, source_url,
	project_id, meeting_id, object_key, content_size, metadata, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	var d models.Document
	var sourceID, sourceURL, projectID, meetingID sql.NullString
	err := row.Scan(&d.ID, &d.Title, &d.Filename, &d.DocumentType,
		&sourceID, &sourceURL, &projectID, &meetingID,
		&d.ObjectKey, &d.ContentSize,
		&d.Metadata, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.SourceID = sourceID.String
	d.SourceURL = sourceURL.String
	d.ProjectID = projectID.String
	d.MeetingID = meetingID.String
	return &d, nil
}

func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	query := `
		INSERT INTO documents (id, title, filename, document_type, source_id,
			source_url, project_id, meeting_id, object_key, content_size, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		d.ID, d.Title, d.Filename, d.DocumentType,
		nullable(d.SourceID), nullable(d.SourceURL),
		nullable(d.ProjectID), nullable(d.MeetingID),
		d.ObjectKey, d.ContentSize, d.Metadata,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

// List returns documents newest first, optionally filtered by type.
func (r *DocumentRepository) List(ctx context.Context, docType models.DocumentType, limit, offset int) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	args := []any{}
	if docType != "" {
		query += ` WHERE document_type = $1`
		args = append(args, docType)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListByProject returns every document attached to the project, newest
// first.
func (r *DocumentRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE project_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// joinColumns prefixes each column with the "d." alias for joined selects.
func joinColumns(cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ", d.")
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonesrussell/docbridge/internal/models"
)

type MeetingRepository struct {
	db *sql.DB
}

func NewMeetingRepository(db *sql.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

const meetingColumns = `id, title, meeting_type, scheduled_at, project_id,
	event_id, metadata, created_at, updated_at`

func scanMeeting(row interface{ Scan(...any) error }) (*models.Meeting, error) {
	var m models.Meeting
	var projectID, eventID sql.NullString
	err := row.Scan(&m.ID, &m.Title, &m.MeetingType, &m.ScheduledAt,
		&projectID, &eventID, &m.Metadata, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.ProjectID = projectID.String
	m.EventID = eventID.String
	return &m, nil
}

func (r *MeetingRepository) Create(ctx context.Context, m *models.Meeting) error {
	query := `
		INSERT INTO meetings (id, title, meeting_type, scheduled_at, project_id, event_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.Title, m.MeetingType, m.ScheduledAt,
		nullable(m.ProjectID), nullable(m.EventID), m.Metadata,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}
	return nil
}

func (r *MeetingRepository) GetByID(ctx context.Context, id string) (*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`

	m, err := scanMeeting(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get meeting %s: %w", id, err)
	}
	return m, nil
}

// List returns meetings soonest first, optionally filtered by type.
func (r *MeetingRepository) List(ctx context.Context, meetingType string) ([]*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings`
	args := []any{}
	if meetingType != "" {
		query += ` WHERE meeting_type = $1`
		args = append(args, meetingType)
	}
	query += ` ORDER BY scheduled_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*models.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (r *MeetingRepository) Update(ctx context.Context, m *models.Meeting) error {
	query := `
		UPDATE meetings
		SET title = $2, meeting_type = $3, scheduled_at = $4, project_id = $5,
			event_id = $6, metadata = $7, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		m.ID, m.Title, m.MeetingType, m.ScheduledAt,
		nullable(m.ProjectID), nullable(m.EventID), m.Metadata)
	if err != nil {
		return fmt.Errorf("update meeting %s: %w", m.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update meeting %s: %w", m.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MeetingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete meeting %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete meeting %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkDocument attaches a document to a meeting. Linking twice is a no-op.
func (r *MeetingRepository) LinkDocument(ctx context.Context, meetingID, documentID string) error {
	query := `
		INSERT INTO meeting_documents (meeting_id, document_id)
		VALUES ($1, $2)
		ON CONFLICT (meeting_id, document_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, meetingID, documentID); err != nil {
		return fmt.Errorf("link document %s to meeting %s: %w", documentID, meetingID, err)
	}
	return nil
}

func (r *MeetingRepository) UnlinkDocument(ctx context.Context, meetingID, documentID string) error {
	query := `DELETE FROM meeting_documents WHERE meeting_id = $1 AND document_id = $2`

	result, err := r.db.ExecContext(ctx, query, meetingID, documentID)
	if err != nil {
		return fmt.Errorf("unlink document %s from meeting %s: %w", documentID, meetingID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unlink document %s from meeting %s: %w", documentID, meetingID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Documents returns the documents linked to a meeting, newest first.
func (r *MeetingRepository) Documents(ctx context.Context, meetingID string) ([]*models.Document, error) {
	query := `
		SELECT d.` + joinColumns(documentColumns) + `
		FROM documents d
		JOIN meeting_documents md ON md.document_id = d.id
		WHERE md.meeting_id = $1
		ORDER BY d.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("meeting %s documents: %w", meetingID, err)
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

// Package models defines the persisted entities shared by the repository,
// importer, and HTTP layers.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DocumentType identifies the source system a document was imported from.
type DocumentType string

const (
	DocumentTypeFile       DocumentType = "file"
	DocumentTypeJira       DocumentType = "jira"
	DocumentTypeConfluence DocumentType = "confluence"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeFile, DocumentTypeJira, DocumentTypeConfluence:
		return true
	}
	return false
}

// JSONMap is a JSONB column holding free-form metadata.
type JSONMap map[string]any

// Value implements driver.Valuer for JSONB storage.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB columns.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Document is a normalized imported document. Content lives in object
// storage under ObjectKey; the row carries identity and provenance.
type Document struct {
	ID           string       `db:"id"            json:"id"`
	Title        string       `db:"title"         json:"title"`
	Filename     string       `db:"filename"      json:"filename"`
	DocumentType DocumentType `db:"document_type" json:"document_type"`
	SourceID     string       `db:"source_id"     json:"source_id,omitempty"`
	SourceURL    string       `db:"source_url"    json:"source_url,omitempty"`
	ProjectID    string       `db:"project_id"    json:"project_id,omitempty"`
	MeetingID    string       `db:"meeting_id"    json:"meeting_id,omitempty"`
	ObjectKey    string       `db:"object_key"    json:"-"`
	ContentSize  int64        `db:"content_size"  json:"content_size"`
	Metadata     JSONMap      `db:"metadata"      json:"metadata,omitempty"`
	CreatedAt    time.Time    `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"    json:"updated_at"`
}

// Meeting groups imported documents around a scheduled discussion.
type Meeting struct {
	ID          string    `db:"id"           json:"id"`
	Title       string    `db:"title"        json:"title"`
	MeetingType string    `db:"meeting_type" json:"meeting_type"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	ProjectID   string    `db:"project_id"   json:"project_id,omitempty"`
	EventID     string    `db:"event_id"     json:"event_id,omitempty"`
	Metadata    JSONMap   `db:"metadata"     json:"metadata,omitempty"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}

// Project is a lightweight grouping for meetings and documents.
type Project struct {
	ID          string    `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	JiraKey     string    `db:"jira_key"    json:"jira_key,omitempty"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

package model

import "time"

// Status is the lifecycle state of a document version.
type Status string

const (
	StatusPending  Status = "PENDENTE"
	StatusApproved Status = "APROVADO"
)

// Document represents one version of a file submitted to a project.
// This is a pure domain model with no database-specific dependencies or tags.
// A new version is a new Document row with Version = predecessor.Version+1
// and PreviousVersionID pointing back; the predecessor row is never touched.
// StorageKey references the object store, which owns the bytes.
type Document struct {
	ID                string     `json:"id"`
	FileName          string     `json:"file_name"`
	StorageKey        string     `json:"storage_key"`
	Size              int64      `json:"size"`
	ContentType       string     `json:"content_type"`
	Version           int        `json:"version"`
	Status            Status     `json:"status"`
	ProjectID         string     `json:"project_id"`
	CreatedByID       string     `json:"created_by_id"`
	ApprovedByID      *string    `json:"approved_by_id,omitempty"`
	PreviousVersionID *string    `json:"previous_version_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
}

// Approved reports whether this version reached its terminal state.
func (d *Document) Approved() bool {
	return d.Status == StatusApproved
}

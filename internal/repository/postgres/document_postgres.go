package postgres

import (
	"context"
	"database/sql"

	"filehub/internal/model"
	"filehub/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, file_name, storage_key, size, content_type, version, status, project_id, created_by, approved_by, previous_version_id, created_at, approved_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.FileName,
		&d.StorageKey,
		&d.Size,
		&d.ContentType,
		&d.Version,
		&d.Status,
		&d.ProjectID,
		&d.CreatedByID,
		&d.ApprovedByID,
		&d.PreviousVersionID,
		&d.CreatedAt,
		&d.ApprovedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, file_name, storage_key, size, content_type, version, status, project_id, created_by, approved_by, previous_version_id, created_at, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.FileName,
		doc.StorageKey,
		doc.Size,
		doc.ContentType,
		doc.Version,
		doc.Status,
		doc.ProjectID,
		doc.CreatedByID,
		doc.ApprovedByID,
		doc.PreviousVersionID,
		doc.CreatedAt,
		doc.ApprovedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// FindByProjectID returns all documents of a project in insertion order.
func (r *DocumentPostgres) FindByProjectID(ctx context.Context, projectID string) ([]model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE project_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update persists approval state changes and returns the stored record.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET status = $2, approved_by = $3, approved_at = $4
		WHERE id = $1
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Status,
		doc.ApprovedByID,
		doc.ApprovedAt,
	)
	return scanDocument(row)
}

// CountByProjectID returns how many document rows reference the project.
func (r *DocumentPostgres) CountByProjectID(ctx context.Context, projectID string) (int, error) {
	const q = `SELECT COUNT(*) FROM documents WHERE project_id = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, q, projectID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

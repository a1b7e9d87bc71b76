package repository

import (
	"context"

	"filehub/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or sql.ErrNoRows if absent.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByProjectID returns all documents of a project in insertion order.
	FindByProjectID(ctx context.Context, projectID string) ([]model.Document, error)

	// Update persists approval state changes (status, approver, approval time).
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// CountByProjectID returns how many document rows reference the project.
	CountByProjectID(ctx context.Context, projectID string) (int, error)
}

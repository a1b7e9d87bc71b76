package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"filehub/internal/apperr"
	"filehub/internal/model"
	"filehub/internal/repository"
	"filehub/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrReaderNil  = errors.New("reader is nil")
)

// DownloadResult carries a document's content stream and metadata for the
// HTTP boundary. The caller must close Content.
type DownloadResult struct {
	Document    *model.Document
	Content     io.ReadCloser
	ContentType string
	Size        int64
}

// DocumentService enforces document submission, approval, and versioning rules.
type DocumentService interface {
	// Submit stores the content under a fresh storage key and creates a
	// PENDENTE document at version 1. Project and user must exist.
	Submit(ctx context.Context, projectID, userID, fileName string, r io.Reader, contentType string, size int64) (*model.Document, error)

	// Approve transitions a PENDENTE document to APROVADO, stamping approver
	// and approval time. The approver must exist and be in the project's
	// approver set. An already approved document is terminal: a second
	// approval attempt fails with a conflict.
	Approve(ctx context.Context, documentID, approverID string) (*model.Document, error)

	// NewVersion stores new content and creates a successor document with
	// version = original.version+1, PENDENTE, linked back to the original.
	// The original row is untouched.
	NewVersion(ctx context.Context, originalDocumentID, userID, fileName string, r io.Reader, contentType string, size int64) (*model.Document, error)

	// ListByProject returns all documents of a project in insertion order.
	ListByProject(ctx context.Context, projectID string) ([]model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Download streams a document's content. Only project members and the
	// project creator may download; anyone else is rejected.
	Download(ctx context.Context, documentID, requesterID string) (*DownloadResult, error)
}

type documentService struct {
	store    storage.Storage
	docs     repository.DocumentRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, docs repository.DocumentRepository, projects repository.ProjectRepository, users repository.UserRepository) DocumentService {
	return &documentService{store: store, docs: docs, projects: projects, users: users}
}

// storageKey builds a globally unique object key from a fresh UUID and the
// original file name, under a common prefix. Caller-supplied names are never
// used alone, so keys cannot collide.
func storageKey(fileName string) string {
	return filepath.ToSlash(filepath.Join("documents", uuid.New().String()+"-"+fileName))
}

func (s *documentService) Submit(ctx context.Context, projectID, userID, fileName string, r io.Reader, contentType string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}

	exists, err := s.projects.ExistsByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("project", projectID)
	}

	exists, err = s.users.ExistsByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user", userID)
	}

	return s.createVersion(ctx, projectID, userID, fileName, r, contentType, size, 1, nil)
}

func (s *documentService) Approve(ctx context.Context, documentID, approverID string) (*model.Document, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("document", documentID)
		}
		return nil, err
	}
	if doc.Approved() {
		return nil, apperr.Conflict("document is already approved")
	}

	exists, err := s.users.ExistsByID(ctx, approverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("approver", approverID)
	}

	project, err := s.projects.FindByID(ctx, doc.ProjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("project", doc.ProjectID)
		}
		return nil, err
	}
	if !project.CanApprove(approverID) {
		return nil, apperr.Forbidden("user is not an approver of the project")
	}

	now := time.Now().UTC()
	doc.Status = model.StatusApproved
	doc.ApprovedByID = &approverID
	doc.ApprovedAt = &now

	return s.docs.Update(ctx, doc)
}

func (s *documentService) NewVersion(ctx context.Context, originalDocumentID, userID, fileName string, r io.Reader, contentType string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}

	original, err := s.docs.FindByID(ctx, originalDocumentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("document", originalDocumentID)
		}
		return nil, err
	}

	exists, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user", userID)
	}

	return s.createVersion(ctx, original.ProjectID, userID, fileName, r, contentType, size, original.Version+1, &original.ID)
}

// createVersion uploads content and persists one document row. If the DB
// write fails after a successful upload the object is deleted again, so no
// blob is left orphaned.
func (s *documentService) createVersion(ctx context.Context, projectID, userID, fileName string, r io.Reader, contentType string, size int64, version int, previousID *string) (*model.Document, error) {
	key := storageKey(fileName)

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": fileName,
		},
	})
	if err != nil {
		return nil, apperr.Storage("put", err)
	}

	doc := &model.Document{
		ID:                uuid.New().String(),
		FileName:          fileName,
		StorageKey:        objInfo.Key,
		Size:              objInfo.Size,
		ContentType:       objInfo.ContentType,
		Version:           version,
		Status:            model.StatusPending,
		ProjectID:         projectID,
		CreatedByID:       userID,
		PreviousVersionID: previousID,
		CreatedAt:         time.Now().UTC(),
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *documentService) ListByProject(ctx context.Context, projectID string) ([]model.Document, error) {
	if projectID == "" {
		return nil, ErrIDRequired
	}
	return s.docs.FindByProjectID(ctx, projectID)
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("document", id)
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Download(ctx context.Context, documentID, requesterID string) (*DownloadResult, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.FindByID(ctx, doc.ProjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("project", doc.ProjectID)
		}
		return nil, err
	}
	if !project.CanRead(requesterID) {
		return nil, apperr.Forbidden("user is not a member or creator of the project")
	}

	rc, info, err := s.store.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, apperr.Storage("get", err)
	}
	return &DownloadResult{
		Document:    doc,
		Content:     rc,
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/collab-docs-api/internal/constants"
	"github.com/yukikurage/collab-docs-api/internal/metrics"
	"github.com/yukikurage/collab-docs-api/internal/models"
	"github.com/yukikurage/collab-docs-api/internal/repository"
	"github.com/yukikurage/collab-docs-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrDocumentNameRequired = errors.New("document name is required")
	ErrDocumentNameTooLong  = errors.New("document name is too long")
	ErrWorkspaceIDRequired  = errors.New("workspace id is required")
	ErrDocumentEditDenied   = errors.New("not authorized to edit this document, you can only view it")
	ErrDocumentDeleteDenied = errors.New("not authorized to delete this document")
	ErrDocumentCreateDenied = errors.New("only the workspace owner can create documents in this workspace")
)

// DocumentService owns document records and resolves effective permissions.
type DocumentService struct {
	documentRepo          repository.DocumentRepository
	workspaceRepo         repository.WorkspaceRepository
	requireWorkspaceOwner bool
}

// DocumentServiceOption configures a DocumentService.
type DocumentServiceOption func(*DocumentService)

// WithWorkspaceOwnerCreateGuard restricts document creation to the workspace owner.
func WithWorkspaceOwnerCreateGuard(enabled bool) DocumentServiceOption {
	return func(s *DocumentService) {
		s.requireWorkspaceOwner = enabled
	}
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(documentRepo repository.DocumentRepository, workspaceRepo repository.WorkspaceRepository, opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{
		documentRepo:  documentRepo,
		workspaceRepo: workspaceRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DocumentView is a document together with the requester's derived permissions.
type DocumentView struct {
	Document    *models.Document
	Permissions Permissions
}

// CreateDocumentInput represents input for creating a document
type CreateDocumentInput struct {
	Name        string
	Content     string
	WorkspaceID uint64
}

// UpdateDocumentInput is a partial patch; nil fields stay unchanged.
type UpdateDocumentInput struct {
	Name    *string
	Content *string
}

// Create stores a new document authored by author in an existing workspace.
func (s *DocumentService) Create(ctx context.Context, author Identity, input CreateDocumentInput) (*models.Document, error) {
	name, err := validateDocumentName(input.Name)
	if err != nil {
		return nil, err
	}
	if input.WorkspaceID == 0 {
		return nil, ErrWorkspaceIDRequired
	}

	workspace, err := s.workspaceRepo.FindByID(ctx, input.WorkspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	if s.requireWorkspaceOwner && !workspace.IsOwnedBy(author.UserID) {
		metrics.AuthorizationDenied.WithLabelValues("document", "create").Inc()
		return nil, ErrDocumentCreateDenied
	}

	document := &models.Document{
		Name:             name,
		Content:          input.Content,
		WorkspaceID:      workspace.ID,
		DocumentAuthorID: author.UserID,
	}
	if err := s.documentRepo.Create(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return document, nil
}

// Get returns the document with permissions recomputed for requester.
func (s *DocumentService) Get(ctx context.Context, id uint64, requester Identity) (*DocumentView, error) {
	document, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	return &DocumentView{
		Document:    document,
		Permissions: DerivePermissions(requester, document),
	}, nil
}

// Update applies a partial patch when requester is an effective editor.
func (s *DocumentService) Update(ctx context.Context, id uint64, requester Identity, input UpdateDocumentInput) (*DocumentView, error) {
	document, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !DerivePermissions(requester, document).CanEdit {
		metrics.AuthorizationDenied.WithLabelValues("document", "update").Inc()
		return nil, ErrDocumentEditDenied
	}

	if input.Name != nil {
		name, err := validateDocumentName(*input.Name)
		if err != nil {
			return nil, err
		}
		document.Name = name
	}
	if input.Content != nil {
		document.Content = *input.Content
	}

	if err := s.documentRepo.Update(ctx, document); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	return &DocumentView{
		Document:    document,
		Permissions: DerivePermissions(requester, document),
	}, nil
}

// Delete removes the document when requester is its creator or owns its workspace.
func (s *DocumentService) Delete(ctx context.Context, id uint64, requester Identity) error {
	document, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if !DerivePermissions(requester, document).CanDelete {
		metrics.AuthorizationDenied.WithLabelValues("document", "delete").Inc()
		return ErrDocumentDeleteDenied
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		// a concurrent delete may have won after the permission check
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

// ListAll returns every document with its author preloaded.
func (s *DocumentService) ListAll(ctx context.Context, page utils.PaginationParams) ([]models.Document, int64, error) {
	documents, total, err := s.documentRepo.List(ctx, repository.DocumentFilter{Pagination: page})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, total, nil
}

// ListByAuthor returns documents created by authorID.
func (s *DocumentService) ListByAuthor(ctx context.Context, authorID uint64, page utils.PaginationParams) ([]models.Document, int64, error) {
	documents, total, err := s.documentRepo.List(ctx, repository.DocumentFilter{
		AuthorID:   &authorID,
		Pagination: page,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, total, nil
}

// ListByWorkspace returns all documents in an existing workspace with requester's permissions.
func (s *DocumentService) ListByWorkspace(ctx context.Context, workspaceID uint64, requester Identity, page utils.PaginationParams) ([]DocumentView, int64, error) {
	if workspaceID == 0 {
		return nil, 0, ErrWorkspaceIDRequired
	}

	if _, err := s.workspaceRepo.FindByID(ctx, workspaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrWorkspaceNotFound
		}
		return nil, 0, fmt.Errorf("failed to find workspace: %w", err)
	}

	documents, total, err := s.documentRepo.List(ctx, repository.DocumentFilter{
		WorkspaceID: &workspaceID,
		Pagination:  page,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	views := make([]DocumentView, len(documents))
	for i := range documents {
		views[i] = DocumentView{
			Document:    &documents[i],
			Permissions: DerivePermissions(requester, &documents[i]),
		}
	}
	return views, total, nil
}

func (s *DocumentService) find(ctx context.Context, id uint64) (*models.Document, error) {
	document, err := s.documentRepo.FindByID(ctx, id, "DocumentAuthor", "Workspace")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return document, nil
}

func validateDocumentName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrDocumentNameRequired
	}
	if len(name) > constants.MaxNameLength {
		return "", ErrDocumentNameTooLong
	}
	return name, nil
}

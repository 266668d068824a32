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
	ErrWorkspaceNotFound    = errors.New("workspace not found")
	ErrInvalidWorkspaceName = errors.New("workspace name cannot be empty")
	ErrWorkspaceNameTooLong = errors.New("workspace name is too long")
	ErrNotWorkspaceOwner    = errors.New("only the workspace owner can perform this action")
	ErrWorkspaceNotEmpty    = errors.New("workspace still contains documents")
)

// DeletePolicy decides what happens to dependent records when an owner is deleted.
type DeletePolicy string

const (
	DeleteCascade  DeletePolicy = "cascade"
	DeleteRestrict DeletePolicy = "restrict"
)

// WorkspaceService owns workspace records and the single-owner rule.
type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	documentRepo  repository.DocumentRepository
	deletePolicy  DeletePolicy
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, documentRepo repository.DocumentRepository, deletePolicy DeletePolicy) *WorkspaceService {
	if deletePolicy == "" {
		deletePolicy = DeleteCascade
	}
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		documentRepo:  documentRepo,
		deletePolicy:  deletePolicy,
	}
}

// UpdateWorkspaceInput is the patch accepted by Update.
type UpdateWorkspaceInput struct {
	Name string
}

// Create creates a workspace owned by owner.
func (s *WorkspaceService) Create(ctx context.Context, owner Identity, name string) (*models.Workspace, error) {
	name, err := validateWorkspaceName(name)
	if err != nil {
		return nil, err
	}

	workspace := &models.Workspace{
		Name:              name,
		WorkspaceAuthorID: owner.UserID,
	}
	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return workspace, nil
}

// Get returns the workspace when requester owns it.
func (s *WorkspaceService) Get(ctx context.Context, id uint64, requester Identity) (*models.Workspace, error) {
	return s.authorize(ctx, id, requester, "get")
}

// Update renames a workspace owned by requester.
func (s *WorkspaceService) Update(ctx context.Context, id uint64, requester Identity, input UpdateWorkspaceInput) (*models.Workspace, error) {
	workspace, err := s.authorize(ctx, id, requester, "update")
	if err != nil {
		return nil, err
	}

	name, err := validateWorkspaceName(input.Name)
	if err != nil {
		return nil, err
	}

	workspace.Name = name
	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	return workspace, nil
}

// Delete removes a workspace owned by requester, applying the configured policy to its documents.
func (s *WorkspaceService) Delete(ctx context.Context, id uint64, requester Identity) error {
	if _, err := s.authorize(ctx, id, requester, "delete"); err != nil {
		return err
	}

	var err error
	switch s.deletePolicy {
	case DeleteRestrict:
		count, countErr := s.documentRepo.CountByWorkspace(ctx, id)
		if countErr != nil {
			return fmt.Errorf("failed to count workspace documents: %w", countErr)
		}
		if count > 0 {
			return ErrWorkspaceNotEmpty
		}
		err = s.workspaceRepo.Delete(ctx, id)
	default:
		err = s.workspaceRepo.DeleteWithDocuments(ctx, id)
	}

	if err != nil {
		// a concurrent delete may have won after the ownership check
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	return nil
}

// ListAll returns every workspace regardless of owner.
func (s *WorkspaceService) ListAll(ctx context.Context, page utils.PaginationParams) ([]models.Workspace, int64, error) {
	workspaces, total, err := s.workspaceRepo.List(ctx, repository.WorkspaceFilter{Pagination: page})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, total, nil
}

// ListByOwner returns the workspaces owned by ownerID.
func (s *WorkspaceService) ListByOwner(ctx context.Context, ownerID uint64, page utils.PaginationParams) ([]models.Workspace, int64, error) {
	workspaces, total, err := s.workspaceRepo.List(ctx, repository.WorkspaceFilter{
		AuthorID:   &ownerID,
		Pagination: page,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, total, nil
}

// authorize loads the workspace and checks single-owner control.
func (s *WorkspaceService) authorize(ctx context.Context, id uint64, requester Identity, operation string) (*models.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if !workspace.IsOwnedBy(requester.UserID) {
		metrics.AuthorizationDenied.WithLabelValues("workspace", operation).Inc()
		return nil, ErrNotWorkspaceOwner
	}

	return workspace, nil
}

func validateWorkspaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidWorkspaceName
	}
	if len(name) > constants.MaxNameLength {
		return "", ErrWorkspaceNameTooLong
	}
	return name, nil
}

package repository

import (
	"context"

	"github.com/yukikurage/collab-docs-api/internal/database"
	"github.com/yukikurage/collab-docs-api/internal/models"
	"gorm.io/gorm"
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	queryScope
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB, opts ...Option) WorkspaceRepository {
	return &GormWorkspaceRepository{queryScope: newQueryScope(db, opts)}
}

// Create creates a new workspace
func (r *GormWorkspaceRepository) Create(ctx context.Context, workspace *models.Workspace) error {
	db, cancel := r.with(ctx)
	defer cancel()
	return db.Create(workspace).Error
}

// FindByID finds a workspace by ID
func (r *GormWorkspaceRepository) FindByID(ctx context.Context, id uint64) (*models.Workspace, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var workspace models.Workspace
	if err := db.First(&workspace, id).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// Update persists the name; the author is immutable. A row deleted in the meantime is not re-created.
func (r *GormWorkspaceRepository) Update(ctx context.Context, workspace *models.Workspace) error {
	db, cancel := r.with(ctx)
	defer cancel()

	return affected(db.Model(workspace).
		Select("name", "updated_at").
		Updates(workspace))
}

// Delete deletes the workspace row only
func (r *GormWorkspaceRepository) Delete(ctx context.Context, id uint64) error {
	db, cancel := r.with(ctx)
	defer cancel()
	return affected(db.Delete(&models.Workspace{}, id))
}

// DeleteWithDocuments deletes a workspace and its documents in a transaction
func (r *GormWorkspaceRepository) DeleteWithDocuments(ctx context.Context, id uint64) error {
	db, cancel := r.with(ctx)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return err
		}

		return affected(tx.Delete(&models.Workspace{}, id))
	})
}

// List retrieves workspaces with filtering and pagination
func (r *GormWorkspaceRepository) List(ctx context.Context, filter WorkspaceFilter) ([]models.Workspace, int64, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	query := db.Model(&models.Workspace{})
	if filter.AuthorID != nil {
		query = query.Where("workspace_author_id = ?", *filter.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var workspaces []models.Workspace
	if err := query.
		Preload("WorkspaceAuthor").
		Order("id ASC").
		Scopes(database.Paginate(filter.Pagination)).
		Find(&workspaces).Error; err != nil {
		return nil, 0, err
	}

	return workspaces, total, nil
}

package repository

import (
	"context"

	"github.com/yukikurage/collab-docs-api/internal/database"
	"github.com/yukikurage/collab-docs-api/internal/models"
	"gorm.io/gorm"
)

// GormDocumentRepository is a GORM implementation of DocumentRepository
type GormDocumentRepository struct {
	queryScope
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *gorm.DB, opts ...Option) DocumentRepository {
	return &GormDocumentRepository{queryScope: newQueryScope(db, opts)}
}

// Create creates a new document
func (r *GormDocumentRepository) Create(ctx context.Context, document *models.Document) error {
	db, cancel := r.with(ctx)
	defer cancel()
	return db.Create(document).Error
}

// FindByID finds a document by ID with optional preloading
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Document, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	query := db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var document models.Document
	if err := query.First(&document, id).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

// Update persists name and content; workspace and author are immutable
func (r *GormDocumentRepository) Update(ctx context.Context, document *models.Document) error {
	db, cancel := r.with(ctx)
	defer cancel()

	return affected(db.Model(document).
		Select("name", "content", "updated_at").
		Updates(document))
}

// Delete deletes a document
func (r *GormDocumentRepository) Delete(ctx context.Context, id uint64) error {
	db, cancel := r.with(ctx)
	defer cancel()
	return affected(db.Delete(&models.Document{}, id))
}

// List retrieves documents with filtering and pagination
func (r *GormDocumentRepository) List(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	query := db.Model(&models.Document{})
	if filter.WorkspaceID != nil {
		query = query.Where("workspace_id = ?", *filter.WorkspaceID)
	}
	if filter.AuthorID != nil {
		query = query.Where("document_author_id = ?", *filter.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var documents []models.Document
	if err := query.
		Preload("DocumentAuthor").
		Preload("Workspace").
		Order("id ASC").
		Scopes(database.Paginate(filter.Pagination)).
		Find(&documents).Error; err != nil {
		return nil, 0, err
	}

	return documents, total, nil
}

// CountByWorkspace counts documents in a workspace
func (r *GormDocumentRepository) CountByWorkspace(ctx context.Context, workspaceID uint64) (int64, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var count int64
	if err := db.Model(&models.Document{}).Where("workspace_id = ?", workspaceID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

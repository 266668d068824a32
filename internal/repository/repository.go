package repository

import (
	"context"
	"time"

	"github.com/yukikurage/collab-docs-api/internal/models"
	"github.com/yukikurage/collab-docs-api/internal/utils"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Update saves changed user fields
	Update(ctx context.Context, user *models.User) error

	// Delete removes only the user row
	Delete(ctx context.Context, id uint64) error

	// DeleteWithOwnedContent removes the user, the documents they authored, their
	// workspaces and every document inside those workspaces within a single transaction.
	DeleteWithOwnedContent(ctx context.Context, id uint64) error

	// CountOwnedContent counts workspaces owned and documents authored by the user
	CountOwnedContent(ctx context.Context, id uint64) (workspaces int64, documents int64, err error)
}

// WorkspaceFilter holds filtering options for listing workspaces
type WorkspaceFilter struct {
	AuthorID   *uint64
	Pagination utils.PaginationParams
}

// WorkspaceRepository defines the interface for workspace data access
type WorkspaceRepository interface {
	// Create creates a new workspace
	Create(ctx context.Context, workspace *models.Workspace) error

	// FindByID finds a workspace by ID
	FindByID(ctx context.Context, id uint64) (*models.Workspace, error)

	// Update updates a workspace
	Update(ctx context.Context, workspace *models.Workspace) error

	// Delete removes only the workspace row
	Delete(ctx context.Context, id uint64) error

	// DeleteWithDocuments removes the workspace and all its documents in a transaction
	DeleteWithDocuments(ctx context.Context, id uint64) error

	// List retrieves workspaces with filtering and pagination
	List(ctx context.Context, filter WorkspaceFilter) ([]models.Workspace, int64, error)
}

// DocumentFilter holds filtering options for listing documents
type DocumentFilter struct {
	WorkspaceID *uint64
	AuthorID    *uint64
	Pagination  utils.PaginationParams
}

// DocumentRepository defines the interface for document data access
type DocumentRepository interface {
	// Create creates a new document
	Create(ctx context.Context, document *models.Document) error

	// FindByID finds a document by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Document, error)

	// Update updates a document
	Update(ctx context.Context, document *models.Document) error

	// Delete removes a document
	Delete(ctx context.Context, id uint64) error

	// List retrieves documents with filtering and pagination, author and workspace preloaded
	List(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error)

	// CountByWorkspace counts documents inside a workspace
	CountByWorkspace(ctx context.Context, workspaceID uint64) (int64, error)
}

// Option configures a GORM repository
type Option func(*queryScope)

// WithQueryTimeout bounds every datastore call made by the repository
func WithQueryTimeout(d time.Duration) Option {
	return func(q *queryScope) {
		q.timeout = d
	}
}

// queryScope binds a request context, bounded by the configured timeout, to the handle
type queryScope struct {
	db      *gorm.DB
	timeout time.Duration
}

func newQueryScope(db *gorm.DB, opts []Option) queryScope {
	q := queryScope{db: db}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

func (q queryScope) with(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if q.timeout <= 0 {
		return q.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	return q.db.WithContext(ctx), cancel
}

// affected maps a write that touched no rows to gorm.ErrRecordNotFound
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

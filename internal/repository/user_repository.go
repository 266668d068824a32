package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/collab-docs-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	queryScope
}

var (
	// ErrDeleteAuthoredDocuments is returned when removing the user's documents fails inside the delete transaction.
	ErrDeleteAuthoredDocuments = errors.New("user repository: delete authored documents failed")
	// ErrDeleteOwnedWorkspaces is returned when removing the user's workspaces fails inside the delete transaction.
	ErrDeleteOwnedWorkspaces = errors.New("user repository: delete owned workspaces failed")
	// ErrDeleteUser is returned when removing the user row fails inside the delete transaction.
	ErrDeleteUser = errors.New("user repository: delete user failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB, opts ...Option) UserRepository {
	return &GormUserRepository{queryScope: newQueryScope(db, opts)}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	db, cancel := r.with(ctx)
	defer cancel()
	return db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update persists profile and credential columns of an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	db, cancel := r.with(ctx)
	defer cancel()

	return affected(db.Model(user).
		Select("fullname", "email", "password_hash", "updated_at").
		Updates(user))
}

// Delete deletes the user row only
func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	db, cancel := r.with(ctx)
	defer cancel()
	return affected(db.Delete(&models.User{}, id))
}

// DeleteWithOwnedContent deletes the user together with everything they own in a transaction
func (r *GormUserRepository) DeleteWithOwnedContent(ctx context.Context, id uint64) error {
	db, cancel := r.with(ctx)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Workspace{}).Select("id").Where("workspace_author_id = ?", id)

		if err := tx.Where("document_author_id = ? OR workspace_id IN (?)", id, owned).
			Delete(&models.Document{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteAuthoredDocuments, err)
		}

		if err := tx.Where("workspace_author_id = ?", id).Delete(&models.Workspace{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteOwnedWorkspaces, err)
		}

		if err := affected(tx.Delete(&models.User{}, id)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrDeleteUser, err)
		}

		return nil
	})
}

// CountOwnedContent counts the workspaces and documents that reference the user
func (r *GormUserRepository) CountOwnedContent(ctx context.Context, id uint64) (int64, int64, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var workspaces, documents int64
	if err := db.Model(&models.Workspace{}).Where("workspace_author_id = ?", id).Count(&workspaces).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&models.Document{}).Where("document_author_id = ?", id).Count(&documents).Error; err != nil {
		return 0, 0, err
	}
	return workspaces, documents, nil
}

package models

import "time"

// Workspace is owned by exactly one user for its whole lifetime.
type Workspace struct {
	ID                uint64    `gorm:"primarykey" json:"id"`
	Name              string    `gorm:"type:varchar(255);not null" json:"name"`
	WorkspaceAuthorID uint64    `gorm:"not null" json:"workspace_author_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Relations
	WorkspaceAuthor User       `gorm:"foreignKey:WorkspaceAuthorID" json:"-"`
	Documents       []Document `gorm:"foreignKey:WorkspaceID" json:"-"`
}

// IsOwnedBy reports whether userID is the workspace author.
func (w *Workspace) IsOwnedBy(userID uint64) bool {
	return w != nil && w.ID != 0 && w.WorkspaceAuthorID == userID
}

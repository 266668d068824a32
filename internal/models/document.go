package models

import "time"

// Document belongs to one workspace and one creator; neither changes after creation.
type Document struct {
	ID               uint64    `gorm:"primarykey" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	Content          string    `gorm:"type:text" json:"content"`
	WorkspaceID      uint64    `gorm:"not null" json:"workspace_id"`
	DocumentAuthorID uint64    `gorm:"not null" json:"document_author_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relations
	DocumentAuthor User      `gorm:"foreignKey:DocumentAuthorID" json:"-"`
	Workspace      Workspace `gorm:"foreignKey:WorkspaceID" json:"-"`
}

// IsAuthoredBy reports whether userID created the document.
func (d *Document) IsAuthoredBy(userID uint64) bool {
	return d.DocumentAuthorID == userID
}

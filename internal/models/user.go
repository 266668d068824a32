package models

import "time"

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Fullname     string    `gorm:"type:varchar(255);not null" json:"fullname"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Workspaces []Workspace `gorm:"foreignKey:WorkspaceAuthorID" json:"-"`
	Documents  []Document  `gorm:"foreignKey:DocumentAuthorID" json:"-"`
}

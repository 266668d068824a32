package dto

import (
	"time"

	"github.com/yukikurage/collab-docs-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64    `json:"id"`
	Fullname  string    `json:"fullname"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSummaryDTO is the author block embedded in workspace and document responses
type UserSummaryDTO struct {
	ID       uint64 `json:"id"`
	Fullname string `json:"fullname"`
}

// LoginResponse is returned by a successful login. Token is only set for header transports.
type LoginResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Fullname:  user.Fullname,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// toUserSummary returns nil when the author was not preloaded
func toUserSummary(user models.User) *UserSummaryDTO {
	if user.ID == 0 {
		return nil
	}
	return &UserSummaryDTO{ID: user.ID, Fullname: user.Fullname}
}

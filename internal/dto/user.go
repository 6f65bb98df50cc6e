package dto

import (
	"time"

	"github.com/itjee/jwp-pms-v1/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID           uint64          `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	FullName     string          `json:"full_name,omitempty"`
	Role         models.UserRole `json:"role"`
	IsActive     bool            `json:"is_active"`
	LastActiveAt *time.Time      `json:"last_active_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination PaginationResponseBlock `json:"pagination"`
}

// PaginationResponseBlock mirrors utils.PaginationResponse for DTO embedding
type PaginationResponseBlock struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// TokenResponse represents an issued token pair
type TokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int64   `json:"expires_in"`
	User         UserDTO `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		Role:         user.Role,
		IsActive:     user.IsActive,
		LastActiveAt: user.LastActiveAt,
		CreatedAt:    user.CreatedAt,
	}
}

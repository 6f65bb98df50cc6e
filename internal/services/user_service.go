package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/itjee/jwp-pms-v1/internal/models"
	"github.com/itjee/jwp-pms-v1/internal/repository"
)

var ErrInvalidUserRole = errors.New("invalid user role")

// UserService provides the admin-only user management surface.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns users with pagination.
func (s *UserService) ListUsers(page, pageSize int) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ChangeRole updates a user's global role.
func (s *UserService) ChangeRole(userID uint64, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidUserRole
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to change role: %w", err)
	}

	return user, nil
}

// DeactivateUser marks a user inactive. Accounts are never hard-deleted;
// deactivation revokes access on the next identity resolution.
func (s *UserService) DeactivateUser(userID uint64) error {
	if _, err := s.GetUser(userID); err != nil {
		return err
	}

	if err := s.userRepo.Deactivate(userID); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	return nil
}

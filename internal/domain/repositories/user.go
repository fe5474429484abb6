package repositories

import (
	"context"

	"vault/internal/domain/models"
)

// UserRepository defines data access operations for users
type UserRepository interface {
	// Create inserts a new user.
	// Returns a ConflictError if the email or username is already taken.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// ExistsByEmail reports whether any user has this email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername reports whether a user other than excludeID has this username.
	// Pass an empty excludeID to check against all users.
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)

	// Update persists username, password hash, settings, active flag and updated_at
	Update(ctx context.Context, user *models.User) error
}

package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID retrieves a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByUsername retrieves a user by username (lowercased)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// FindAll retrieves users matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]User, int64, error)
	// Save persists a user (insert or update)
	Save(ctx context.Context, user *User) error
	// Delete removes a user by ID
	Delete(ctx context.Context, id uuid.UUID) error
	// ExistsByUsername checks whether a username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

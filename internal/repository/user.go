package repository

import (
	"context"

	"testlab/internal/model"
)

// UserRepository defines data access for users using SQL queries only.
// No business logic here — strictly persistence operations.
type UserRepository interface {
	// Create inserts a new user record and returns the stored row
	// (may include values set by the DB).
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by its ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List returns a paginated list of users and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error)

	// UpdateAvatarPath sets the stored avatar object key for a user.
	UpdateAvatarPath(ctx context.Context, id, avatarPath string) error

	// Delete removes a user by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

package repository

import (
	"context"

	"filehub/internal/model"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts a new user row and returns the stored record.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by ID, or sql.ErrNoRows if absent.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByIDs returns the users matching the given IDs. IDs with no match
	// contribute nothing to the result; they are not an error.
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)

	// FindByUsername returns a user by unique username, or sql.ErrNoRows.
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// List returns a paginated list of users and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error)

	// Update persists the full user record (caller applies partial changes).
	Update(ctx context.Context, u *model.User) (*model.User, error)

	// ExistsByID reports whether a user row exists.
	ExistsByID(ctx context.Context, id string) (bool, error)

	// Delete removes a user by ID. It returns nil if the row was deleted or
	// did not exist.
	Delete(ctx context.Context, id string) error
}

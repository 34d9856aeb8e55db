package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/nwmlabs/nwm-api/internal/domain"
	"github.com/nwmlabs/nwm-api/internal/query"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. Returns ErrUsernameExists or ErrEmailExists
	// when a unique constraint is violated.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns users shaped by the given filter/sort/page options.
	List(ctx context.Context, opts query.Options) ([]*domain.User, error)

	// Count returns the number of users matching the filter.
	Count(ctx context.Context, filter query.Filter) (int64, error)

	// Update persists a complete user record.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user. Returns ErrUserNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteStaleSignups removes non-activated accounts that signed up
	// before the cutoff and never logged in, returning how many went.
	DeleteStaleSignups(ctx context.Context, before time.Time) (int64, error)

	// WithTx returns a UserStore bound to the given transaction, letting
	// the request pipeline hand its scope to every operation explicitly.
	WithTx(tx *sql.Tx) UserStore
}

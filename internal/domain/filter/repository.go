package filter

import "context"

// Repository defines persistence for saved filters.
type Repository interface {
	// List returns the saved filters of a view, ordered by name.
	List(ctx context.Context, key string) ([]Saved, error)

	// Create inserts saved and fills in its ID and timestamps.
	Create(ctx context.Context, saved *Saved) error

	// Update overwrites name, key and query of an existing filter and
	// refreshes ModifiedAt. Unknown ids return apperror.NotFound.
	Update(ctx context.Context, saved *Saved) error

	// Delete removes a saved filter. Unknown ids return apperror.NotFound.
	Delete(ctx context.Context, id int64) error
}

// Package filter holds the column filter model shared by the row filter
// engine and the saved filter service.
package filter

import (
	"strings"
	"time"

	"pkgconsole/internal/core/apperror"
)

// Term is one column's raw filter expression.
type Term struct {
	ID    string `json:"id"`    // Column key
	Value string `json:"value"` // Expression text as typed (possibly sanitized)
}

// Set is every term active for one view. Terms are ANDed; a column may
// appear more than once.
type Set []Term

// Saved is a named filter set stored by the saved filter service.
type Saved struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Key        string    `db:"key" json:"key"`
	Query      Set       `db:"query" json:"query"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt,omitzero"`
	ModifiedAt time.Time `db:"modified_at" json:"modifiedAt,omitzero"`
}

// MaxNameLength bounds Saved.Name.
const MaxNameLength = 255

// Validate checks the fields a saved filter needs regardless of its query.
func (s *Saved) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return apperror.NewValidation("key is required").
			WithDetail("field", "key")
	}
	if strings.TrimSpace(s.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if len(s.Name) > MaxNameLength {
		return apperror.NewValidation("name is too long").
			WithDetail("field", "name").
			WithDetail("max", MaxNameLength)
	}
	if s.ID < 0 {
		return apperror.NewValidation("invalid id").
			WithDetail("field", "id")
	}
	for i, t := range s.Query {
		if t.ID == "" {
			return apperror.NewValidation("query term without column").
				WithDetail("field", "query").
				WithDetail("index", i)
		}
	}
	return nil
}

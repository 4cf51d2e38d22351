package dto

import (
	"time"

	"pkgconsole/internal/domain/filter"
)

// UpsertFilterRequest creates (no id) or updates a saved filter.
type UpsertFilterRequest struct {
	ID    *int64     `json:"id,omitempty"`
	Key   string     `json:"key"`
	Name  string     `json:"name"`
	Query filter.Set `json:"query"`
}

// ToSaved converts the request to the domain model.
func (r *UpsertFilterRequest) ToSaved() filter.Saved {
	saved := filter.Saved{Key: r.Key, Name: r.Name, Query: r.Query}
	if r.ID != nil {
		saved.ID = *r.ID
	}
	return saved
}

// FilterResponse is one saved filter.
type FilterResponse struct {
	ID         int64      `json:"id"`
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	Query      filter.Set `json:"query"`
	CreatedAt  time.Time  `json:"createdAt"`
	ModifiedAt time.Time  `json:"modifiedAt"`
}

// FromSaved converts the domain model to a response.
func FromSaved(s filter.Saved) FilterResponse {
	query := s.Query
	if query == nil {
		query = filter.Set{}
	}
	return FilterResponse{
		ID:         s.ID,
		Key:        s.Key,
		Name:       s.Name,
		Query:      query,
		CreatedAt:  s.CreatedAt,
		ModifiedAt: s.ModifiedAt,
	}
}

// FromSavedList converts a list, never returning nil.
func FromSavedList(list []filter.Saved) []FilterResponse {
	out := make([]FilterResponse, 0, len(list))
	for _, s := range list {
		out = append(out, FromSaved(s))
	}
	return out
}

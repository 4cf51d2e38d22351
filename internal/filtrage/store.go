package filtrage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"pkgconsole/internal/domain/filter"
	"pkgconsole/pkg/logger"
)

const (
	// KeyPrefix prefixes the stored filter set of a view.
	KeyPrefix = "__filtrage"
	// SelectionPrefix prefixes the selected saved filter id of a view.
	SelectionPrefix = KeyPrefix + "__sel"
)

// ErrNoRemote is returned by the saved filter methods of a Store built
// without a Remote.
var ErrNoRemote = errors.New("saved filters are not configured")

// KV is the device-local key/value store filters are kept in.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Remote is the saved filter service.
type Remote interface {
	List(ctx context.Context, viewKey string) ([]filter.Saved, error)
	Upsert(ctx context.Context, saved filter.Saved) (filter.Saved, error)
	Delete(ctx context.Context, id int64) error
}

// Store persists the active filter set and the selected saved filter per
// view, and fronts the remote saved filter service.
type Store struct {
	kv     KV
	remote Remote
	log    *logger.Logger
}

// NewStore creates a store over kv. remote may be nil when saved filters
// are not available; the saved filter methods then fail.
func NewStore(kv KV, remote Remote, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	return &Store{kv: kv, remote: remote, log: log.WithComponent("filtrage.store")}
}

// Filters returns the stored set for viewKey: nil when viewKey is empty,
// an empty set when nothing was stored yet.
func (s *Store) Filters(viewKey string) (filter.Set, error) {
	if viewKey == "" {
		return nil, nil
	}
	raw, ok, err := s.kv.Get(KeyPrefix + viewKey)
	if err != nil {
		return nil, fmt.Errorf("read filters: %w", err)
	}
	if !ok || raw == "" {
		return filter.Set{}, nil
	}
	var set filter.Set
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, fmt.Errorf("decode filters for %q: %w", viewKey, err)
	}
	if set == nil {
		set = filter.Set{}
	}
	return set, nil
}

// SetFilters stores set for viewKey. A nil set is not written; an empty set
// is stored as "no filters".
func (s *Store) SetFilters(viewKey string, set filter.Set) error {
	if viewKey == "" || set == nil {
		return nil
	}
	data, err := canonicalJSON(set)
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	if err := s.kv.Set(KeyPrefix+viewKey, data); err != nil {
		return fmt.Errorf("write filters: %w", err)
	}
	return nil
}

// SelectedFilterID returns the id of the saved filter selected for viewKey.
// A missing or unparsable value means no selection.
func (s *Store) SelectedFilterID(viewKey string) (int64, bool, error) {
	if viewKey == "" {
		return 0, false, nil
	}
	raw, ok, err := s.kv.Get(SelectionPrefix + viewKey)
	if err != nil {
		return 0, false, fmt.Errorf("read selection: %w", err)
	}
	if !ok {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.log.Debugw("ignoring unparsable selection", "view", viewKey, "value", raw)
		return 0, false, nil
	}
	return id, true, nil
}

// SetSelectedFilterID records the selected saved filter; nil clears it.
func (s *Store) SetSelectedFilterID(viewKey string, id *int64) error {
	if viewKey == "" {
		return nil
	}
	key := SelectionPrefix + viewKey
	if id == nil {
		return s.kv.Remove(key)
	}
	return s.kv.Set(key, strconv.FormatInt(*id, 10))
}

// HasChanged reports whether newFilters differs from what is stored for viewKey.
func (s *Store) HasChanged(newFilters any, viewKey string) (bool, error) {
	raw, ok, err := s.kv.Get(KeyPrefix + viewKey)
	if err != nil {
		return false, fmt.Errorf("read filters: %w", err)
	}
	var stored any
	if ok {
		stored = raw
	}
	return HasChangedFrom(stored, newFilters), nil
}

// HasChangedFrom compares two filter sets by their canonical JSON. A string
// argument is taken as already serialized; nil serializes as "null".
func HasChangedFrom(oldFilters, newFilters any) bool {
	return serialized(oldFilters) != serialized(newFilters)
}

func serialized(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := canonicalJSON(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return data
}

// canonicalJSON encodes v without HTML escaping and without a trailing newline.
func canonicalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// --- Saved filters ---

// ListFilters returns the saved filters of viewKey.
func (s *Store) ListFilters(ctx context.Context, viewKey string) ([]filter.Saved, error) {
	if s.remote == nil {
		return nil, ErrNoRemote
	}
	return s.remote.List(ctx, viewKey)
}

// SaveFilter saves the currently stored set of viewKey under name. A nil id
// creates a new saved filter, otherwise the existing one is renamed/updated.
func (s *Store) SaveFilter(ctx context.Context, viewKey, name string, id *int64) (filter.Saved, error) {
	if s.remote == nil {
		return filter.Saved{}, ErrNoRemote
	}
	query, err := s.Filters(viewKey)
	if err != nil {
		return filter.Saved{}, err
	}
	saved := filter.Saved{Name: name, Key: viewKey, Query: query}
	if id != nil {
		saved.ID = *id
	}
	return s.remote.Upsert(ctx, saved)
}

// DeleteFilter deletes a saved filter, clearing the selection of viewKey
// first when it points at id.
func (s *Store) DeleteFilter(ctx context.Context, viewKey string, id int64) error {
	if s.remote == nil {
		return ErrNoRemote
	}
	selected, ok, err := s.SelectedFilterID(viewKey)
	if err != nil {
		return err
	}
	if ok && selected == id {
		if err := s.SetSelectedFilterID(viewKey, nil); err != nil {
			return fmt.Errorf("clear selection: %w", err)
		}
	}
	return s.remote.Delete(ctx, id)
}

// SelectFilter makes saved the active filter set of viewKey and records it
// as selected.
func (s *Store) SelectFilter(viewKey string, saved filter.Saved) error {
	query := saved.Query
	if query == nil {
		query = filter.Set{}
	}
	if err := s.SetFilters(viewKey, query); err != nil {
		return err
	}
	return s.SetSelectedFilterID(viewKey, &saved.ID)
}

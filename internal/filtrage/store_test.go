package filtrage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgconsole/internal/domain/filter"
	"pkgconsole/internal/infrastructure/storage/local"
	"pkgconsole/pkg/logger"
)

type fakeRemote struct {
	saved   map[int64]filter.Saved
	nextID  int64
	deleted []int64
	err     error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{saved: make(map[int64]filter.Saved), nextID: 1}
}

func (r *fakeRemote) List(_ context.Context, viewKey string) ([]filter.Saved, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []filter.Saved
	for id := int64(1); id < r.nextID; id++ {
		if s, ok := r.saved[id]; ok && s.Key == viewKey {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRemote) Upsert(_ context.Context, saved filter.Saved) (filter.Saved, error) {
	if r.err != nil {
		return filter.Saved{}, r.err
	}
	if saved.ID == 0 {
		saved.ID = r.nextID
		r.nextID++
	}
	r.saved[saved.ID] = saved
	return saved, nil
}

func (r *fakeRemote) Delete(_ context.Context, id int64) error {
	if r.err != nil {
		return r.err
	}
	delete(r.saved, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func newTestStore() (*Store, *local.MemoryStore, *fakeRemote) {
	kv := local.NewMemoryStore()
	remote := newFakeRemote()
	return NewStore(kv, remote, logger.NewNop()), kv, remote
}

func TestStore_Filters(t *testing.T) {
	store, kv, _ := newTestStore()

	set, err := store.Filters("")
	require.NoError(t, err)
	assert.Nil(t, set)

	set, err = store.Filters("pkgs")
	require.NoError(t, err)
	assert.NotNil(t, set)
	assert.Empty(t, set)

	want := filter.Set{{ID: "name", Value: `"<core>"`}, {ID: "status", Value: "!?"}}
	require.NoError(t, store.SetFilters("pkgs", want))

	set, err = store.Filters("pkgs")
	require.NoError(t, err)
	assert.Equal(t, want, set)

	raw, _, _ := kv.Get(KeyPrefix + "pkgs")
	assert.Equal(t, `[{"id":"name","value":"\"<core>\""},{"id":"status","value":"!?"}]`, raw)
}

func TestStore_SetFiltersNilIsNoop(t *testing.T) {
	store, kv, _ := newTestStore()
	require.NoError(t, store.SetFilters("pkgs", filter.Set{{ID: "a", Value: "b"}}))

	require.NoError(t, store.SetFilters("pkgs", nil))
	set, err := store.Filters("pkgs")
	require.NoError(t, err)
	assert.Equal(t, filter.Set{{ID: "a", Value: "b"}}, set)

	require.NoError(t, store.SetFilters("", filter.Set{}))
	assert.Equal(t, 1, kv.Len())
}

func TestStore_FiltersRejectsCorruptValue(t *testing.T) {
	store, kv, _ := newTestStore()
	require.NoError(t, kv.Set(KeyPrefix+"pkgs", "{not json"))

	_, err := store.Filters("pkgs")
	assert.Error(t, err)
}

func TestStore_Selection(t *testing.T) {
	store, kv, _ := newTestStore()

	_, ok, err := store.SelectedFilterID("pkgs")
	require.NoError(t, err)
	assert.False(t, ok)

	id := int64(42)
	require.NoError(t, store.SetSelectedFilterID("pkgs", &id))
	got, ok, err := store.SelectedFilterID("pkgs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), got)

	raw, _, _ := kv.Get(SelectionPrefix + "pkgs")
	assert.Equal(t, "42", raw)

	require.NoError(t, store.SetSelectedFilterID("pkgs", nil))
	_, ok, err = store.SelectedFilterID("pkgs")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(SelectionPrefix+"pkgs", "abc"))
	_, ok, err = store.SelectedFilterID("pkgs")
	require.NoError(t, err)
	assert.False(t, ok, "unparsable selection counts as none")
}

func TestHasChangedFrom(t *testing.T) {
	set := filter.Set{{ID: "a", Value: "x"}}

	tests := []struct {
		name     string
		old, new any
		want     bool
	}{
		{"same set", set, filter.Set{{ID: "a", Value: "x"}}, false},
		{"different value", set, filter.Set{{ID: "a", Value: "y"}}, true},
		{"serialized old", `[{"id":"a","value":"x"}]`, set, false},
		{"nil and nil", nil, nil, false},
		{"nil and empty", nil, filter.Set{}, true},
		{"order matters", filter.Set{{ID: "a"}, {ID: "b"}}, filter.Set{{ID: "b"}, {ID: "a"}}, true},
		{"no html escaping", `[{"id":"a","value":"<b>"}]`, filter.Set{{ID: "a", Value: "<b>"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasChangedFrom(tt.old, tt.new))
		})
	}
}

func TestStore_HasChanged(t *testing.T) {
	store, _, _ := newTestStore()
	set := filter.Set{{ID: "a", Value: "x"}}

	changed, err := store.HasChanged(set, "pkgs")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.HasChanged(nil, "pkgs")
	require.NoError(t, err)
	assert.False(t, changed, "nothing stored equals nil")

	require.NoError(t, store.SetFilters("pkgs", set))
	changed, err = store.HasChanged(filter.Set{{ID: "a", Value: "x"}}, "pkgs")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestStore_SaveAndListFilters(t *testing.T) {
	store, _, remote := newTestStore()
	ctx := context.Background()
	set := filter.Set{{ID: "status", Value: "act"}}
	require.NoError(t, store.SetFilters("pkgs", set))

	saved, err := store.SaveFilter(ctx, "pkgs", "active only", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)
	assert.Equal(t, "pkgs", saved.Key)
	assert.Equal(t, set, saved.Query)

	require.NoError(t, store.SetFilters("pkgs", filter.Set{}))
	renamed, err := store.SaveFilter(ctx, "pkgs", "cleared", &saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, renamed.ID)
	assert.Equal(t, filter.Set{}, remote.saved[saved.ID].Query)

	list, err := store.ListFilters(ctx, "pkgs")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cleared", list[0].Name)

	list, err = store.ListFilters(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_DeleteFilterClearsSelection(t *testing.T) {
	store, _, remote := newTestStore()
	ctx := context.Background()

	saved, err := remote.Upsert(ctx, filter.Saved{Key: "pkgs", Name: "a"})
	require.NoError(t, err)
	other, err := remote.Upsert(ctx, filter.Saved{Key: "pkgs", Name: "b"})
	require.NoError(t, err)

	require.NoError(t, store.SetSelectedFilterID("pkgs", &other.ID))
	require.NoError(t, store.DeleteFilter(ctx, "pkgs", saved.ID))
	id, ok, err := store.SelectedFilterID("pkgs")
	require.NoError(t, err)
	assert.True(t, ok, "deleting another filter keeps the selection")
	assert.Equal(t, other.ID, id)

	require.NoError(t, store.DeleteFilter(ctx, "pkgs", other.ID))
	_, ok, err = store.SelectedFilterID("pkgs")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []int64{saved.ID, other.ID}, remote.deleted)
}

func TestStore_SelectFilter(t *testing.T) {
	store, _, _ := newTestStore()
	saved := filter.Saved{ID: 7, Key: "pkgs", Query: filter.Set{{ID: "name", Value: "$lib"}}}

	require.NoError(t, store.SelectFilter("pkgs", saved))

	set, err := store.Filters("pkgs")
	require.NoError(t, err)
	assert.Equal(t, saved.Query, set)

	id, ok, err := store.SelectedFilterID("pkgs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	require.NoError(t, store.SelectFilter("pkgs", filter.Saved{ID: 8}))
	set, err = store.Filters("pkgs")
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestStore_RemoteErrors(t *testing.T) {
	ctx := context.Background()

	noRemote := NewStore(local.NewMemoryStore(), nil, logger.NewNop())
	_, err := noRemote.ListFilters(ctx, "pkgs")
	assert.ErrorIs(t, err, ErrNoRemote)
	_, err = noRemote.SaveFilter(ctx, "pkgs", "x", nil)
	assert.ErrorIs(t, err, ErrNoRemote)
	assert.ErrorIs(t, noRemote.DeleteFilter(ctx, "pkgs", 1), ErrNoRemote)

	store, _, remote := newTestStore()
	remote.err = errors.New("unavailable")
	_, err = store.ListFilters(ctx, "pkgs")
	assert.EqualError(t, err, "unavailable")
}

package filters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgconsole/internal/core/apperror"
	"pkgconsole/internal/domain/filter"
	"pkgconsole/internal/filtrage"
	v1 "pkgconsole/internal/infrastructure/http/v1"
	"pkgconsole/internal/infrastructure/storage/local"
	"pkgconsole/pkg/logger"
)

var _ filtrage.Remote = (*Client)(nil)

// memService is an in-memory saved filter service.
type memService struct {
	mu     sync.Mutex
	rows   map[int64]filter.Saved
	nextID int64
}

func (s *memService) List(_ context.Context, key string) ([]filter.Saved, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []filter.Saved{}
	for _, r := range s.rows {
		if r.Key == key {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memService) Upsert(_ context.Context, saved filter.Saved) (filter.Saved, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if saved.Name == "" {
		return filter.Saved{}, apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if saved.ID == 0 {
		s.nextID++
		saved.ID = s.nextID
	} else if _, ok := s.rows[saved.ID]; !ok {
		return filter.Saved{}, apperror.NewNotFound("saved filter", saved.ID)
	}
	s.rows[saved.ID] = saved
	return saved, nil
}

func (s *memService) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return apperror.NewNotFound("saved filter", id)
	}
	delete(s.rows, id)
	return nil
}

type nopPinger struct{}

func (nopPinger) Ping(context.Context) error { return nil }

func newTestClient(t *testing.T) *Client {
	t.Helper()
	router := v1.NewRouter(v1.RouterConfig{
		Logger:  logger.NewNop(),
		Filters: &memService{rows: make(map[int64]filter.Saved)},
		DB:      nopPinger{},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithHTTPClient(srv.Client()))
}

func TestClient_RoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	created, err := client.Upsert(ctx, filter.Saved{
		Key:   "pkgs",
		Name:  "active",
		Query: filter.Set{{ID: "status", Value: `"Active"`}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = client.Upsert(ctx, filter.Saved{Key: "pkgs", Name: "all"})
	require.NoError(t, err)

	list, err := client.List(ctx, "pkgs")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "active", list[0].Name)
	assert.Equal(t, filter.Set{{ID: "status", Value: `"Active"`}}, list[0].Query)
	assert.Equal(t, filter.Set{}, list[1].Query)

	created.Name = "renamed"
	updated, err := client.Upsert(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	require.NoError(t, client.Delete(ctx, created.ID))
	list, err = client.List(ctx, "pkgs")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestClient_ListEncodesKey(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.Upsert(ctx, filter.Saved{Key: "pkgs&view=2", Name: "x"})
	require.NoError(t, err)

	list, err := client.List(ctx, "pkgs&view=2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestClient_Errors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	err := client.Delete(ctx, 42)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apperror.CodeNotFound, apiErr.Code)

	_, err = client.Upsert(ctx, filter.Saved{ID: 9, Key: "pkgs", Name: "x"})
	assert.True(t, IsNotFound(err))

	_, err = client.Upsert(ctx, filter.Saved{Key: "pkgs"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, apperror.CodeValidation, apiErr.Code)
	assert.Equal(t, "name", apiErr.Details["field"])
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream down\n")
	}))
	defer srv.Close()

	_, err := New(srv.URL).List(context.Background(), "pkgs")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.Equal(t, "saved filter API: status 502: upstream down", err.Error())
}

func TestClient_WithStore(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	store := filtrage.NewStore(local.NewMemoryStore(), client, logger.NewNop())

	require.NoError(t, store.SetFilters("pkgs", filter.Set{{ID: "status", Value: "act"}}))
	saved, err := store.SaveFilter(ctx, "pkgs", "active", nil)
	require.NoError(t, err)
	require.NoError(t, store.SelectFilter("pkgs", saved))

	require.NoError(t, store.DeleteFilter(ctx, "pkgs", saved.ID))
	_, ok, err := store.SelectedFilterID("pkgs")
	require.NoError(t, err)
	assert.False(t, ok)
}

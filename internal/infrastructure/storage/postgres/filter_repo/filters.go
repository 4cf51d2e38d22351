// Package filter_repo provides the PostgreSQL repository for saved filters.
package filter_repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pkgconsole/internal/core/apperror"
	"pkgconsole/internal/domain/filter"
	"pkgconsole/internal/infrastructure/storage/postgres"
)

const tableName = "filters"

var selectCols = []string{"id", "key", "name", "query", "created_at", "modified_at"}

// Compile-time check that FilterRepo implements filter.Repository.
var _ filter.Repository = (*FilterRepo)(nil)

// FilterRepo stores saved filters in the filters table.
type FilterRepo struct {
	txm *postgres.TxManager
}

// NewFilterRepo creates a saved filter repository.
func NewFilterRepo(txm *postgres.TxManager) *FilterRepo {
	return &FilterRepo{txm: txm}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func listQuery(key string) squirrel.SelectBuilder {
	return builder().
		Select(selectCols...).
		From(tableName).
		Where(squirrel.Eq{"key": key}).
		OrderBy("name", "id")
}

func insertQuery(saved *filter.Saved, query []byte) squirrel.InsertBuilder {
	return builder().
		Insert(tableName).
		Columns("key", "name", "query").
		Values(saved.Key, saved.Name, query).
		Suffix("RETURNING id, created_at, modified_at")
}

func updateQuery(saved *filter.Saved, query []byte) squirrel.UpdateBuilder {
	return builder().
		Update(tableName).
		Set("key", saved.Key).
		Set("name", saved.Name).
		Set("query", query).
		Set("modified_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": saved.ID}).
		Suffix("RETURNING created_at, modified_at")
}

func deleteQuery(id int64) squirrel.DeleteBuilder {
	return builder().
		Delete(tableName).
		Where(squirrel.Eq{"id": id})
}

func encodeQuery(set filter.Set) ([]byte, error) {
	if set == nil {
		set = filter.Set{}
	}
	data, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return data, nil
}

// List returns the saved filters of key ordered by name.
func (r *FilterRepo) List(ctx context.Context, key string) ([]filter.Saved, error) {
	sql, args, err := listQuery(key).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []filter.Saved
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", tableName, err)
	}
	return items, nil
}

// Create inserts saved and fills in ID, CreatedAt and ModifiedAt.
func (r *FilterRepo) Create(ctx context.Context, saved *filter.Saved) error {
	query, err := encodeQuery(saved.Query)
	if err != nil {
		return err
	}
	sql, args, err := insertQuery(saved, query).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), saved, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", tableName, err)
	}
	return nil
}

// Update overwrites an existing saved filter.
func (r *FilterRepo) Update(ctx context.Context, saved *filter.Saved) error {
	query, err := encodeQuery(saved.Query)
	if err != nil {
		return err
	}
	sql, args, err := updateQuery(saved, query).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), saved, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound(tableName, saved.ID)
		}
		return fmt.Errorf("update %s: %w", tableName, err)
	}
	return nil
}

// Delete removes a saved filter.
func (r *FilterRepo) Delete(ctx context.Context, id int64) error {
	sql, args, err := deleteQuery(id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(tableName, id)
	}
	return nil
}

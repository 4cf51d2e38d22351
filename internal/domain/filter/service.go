package filter

import (
	"context"
	"fmt"

	"pkgconsole/internal/core/apperror"
	"pkgconsole/internal/core/tx"
)

const entityName = "saved filter"

// ValueCheck reports whether a term value is usable by the row filter.
type ValueCheck func(value string) error

// Service provides the saved filter operations behind the REST API.
type Service struct {
	repo      Repository
	txManager tx.Manager
	check     ValueCheck
}

// NewService creates a saved filter service. check may be nil to accept
// any query.
func NewService(repo Repository, txManager tx.Manager, check ValueCheck) *Service {
	return &Service{repo: repo, txManager: txManager, check: check}
}

// List returns the saved filters of key, ordered by name.
func (s *Service) List(ctx context.Context, key string) ([]Saved, error) {
	if key == "" {
		return nil, apperror.NewValidation("key is required").WithDetail("field", "key")
	}
	list, err := s.repo.List(ctx, key)
	if err != nil {
		return nil, normalizeErr(err, key)
	}
	if list == nil {
		list = []Saved{}
	}
	return list, nil
}

// Upsert creates saved when it has no ID and updates it otherwise.
func (s *Service) Upsert(ctx context.Context, saved Saved) (Saved, error) {
	if err := s.validate(&saved); err != nil {
		return Saved{}, err
	}
	if saved.Query == nil {
		saved.Query = Set{}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if saved.ID == 0 {
			if err := s.repo.Create(ctx, &saved); err != nil {
				return fmt.Errorf("create %s: %w", entityName, err)
			}
			return nil
		}
		if err := s.repo.Update(ctx, &saved); err != nil {
			return fmt.Errorf("update %s: %w", entityName, err)
		}
		return nil
	})
	if err != nil {
		return Saved{}, normalizeErr(err, saved.ID)
	}
	return saved, nil
}

// Delete removes a saved filter.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.NewValidation("invalid id").WithDetail("field", "id")
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete %s: %w", entityName, err)
		}
		return nil
	})
	return normalizeErr(err, id)
}

func (s *Service) validate(saved *Saved) error {
	if err := saved.Validate(); err != nil {
		return err
	}
	if s.check == nil {
		return nil
	}
	for _, t := range saved.Query {
		if err := s.check(t.Value); err != nil {
			return apperror.NewInvalidFilter(t.ID, err).WithDetail("value", t.Value)
		}
	}
	return nil
}

func normalizeErr(err error, id any) error {
	if err == nil {
		return nil
	}
	// Preserve existing AppError, but ensure not-found names the entity.
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(entityName, id)
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", entityName)
}

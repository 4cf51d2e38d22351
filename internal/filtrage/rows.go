package filtrage

import (
	"context"
	"fmt"

	"pkgconsole/internal/domain/filter"
	"pkgconsole/internal/filtrage/expr"
	"pkgconsole/pkg/logger"
)

// Engine filters row sets and records the filters applied per view.
type Engine struct {
	store *Store
	log   *logger.Logger
}

// NewEngine creates an engine. store may be nil, in which case nothing is
// persisted.
func NewEngine(store *Store, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Default()
	}
	return &Engine{store: store, log: log.WithComponent("filtrage")}
}

type compiledTerm struct {
	column string
	node   expr.Node
}

// FilterRows returns the rows that satisfy every term, in input order.
//
// Filtering fails open: if any term cannot be sanitized or parsed, or
// matching faults, the error is logged and rows is returned unchanged. On
// success terms are persisted for viewKey as given (unsanitized).
func (e *Engine) FilterRows(ctx context.Context, terms filter.Set, rows []Row, viewKey string) []Row {
	filtered, err := e.filter(ctx, terms, rows)
	if err != nil {
		e.log.WithContext(ctx).Errorw("filter rows failed, returning unfiltered rows",
			"view", viewKey,
			"filters", terms,
			"error", err,
		)
		return rows
	}

	if e.store != nil {
		if err := e.store.SetFilters(viewKey, terms); err != nil {
			e.log.WithContext(ctx).Warnw("persist filters failed", "view", viewKey, "error", err)
		}
	}
	return filtered
}

func (e *Engine) filter(ctx context.Context, terms filter.Set, rows []Row) (out []Row, err error) {
	if len(terms) == 0 {
		return rows, nil
	}

	compiled, err := e.compile(ctx, terms)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("match panicked: %v", r)
		}
	}()

	out = make([]Row, 0, len(rows))
	for _, row := range rows {
		if rowMatches(row, compiled) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (e *Engine) compile(ctx context.Context, terms filter.Set) ([]compiledTerm, error) {
	compiled := make([]compiledTerm, 0, len(terms))
	for _, t := range terms {
		value, err := SanitizeValue(t.Value)
		if err != nil {
			return nil, fmt.Errorf("sanitize %q: %w", t.ID, err)
		}
		node, err := parser.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", t.ID, err)
		}
		if kinds := Unsupported(node); len(kinds) > 0 {
			e.log.WithContext(ctx).Warnw("filter uses unsupported syntax, those parts match nothing",
				"column", t.ID,
				"value", t.Value,
				"kinds", kinds,
			)
		}
		compiled = append(compiled, compiledTerm{column: t.ID, node: node})
	}
	return compiled, nil
}

func rowMatches(row Row, terms []compiledTerm) bool {
	for _, t := range terms {
		if !Match(FieldFromCell(row[t.column]), t.node, false) {
			return false
		}
	}
	return true
}

// SanitizeTerms is Sanitize for interactive edits: on failure it logs the
// rejected set and returns nil, meaning the edit should be ignored and the
// previous filters kept.
func (e *Engine) SanitizeTerms(ctx context.Context, terms filter.Set) filter.Set {
	out, err := Sanitize(terms)
	if err != nil {
		e.log.WithContext(ctx).Warnw("bad filters, ignoring edit", "filters", terms, "error", err)
		return nil
	}
	return out
}

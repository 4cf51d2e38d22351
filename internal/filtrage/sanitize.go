// Package filtrage implements the column filter language used by result
// grids: sanitizing and parsing filter terms, matching them against cell
// values, filtering row sets and persisting the active filters per view.
package filtrage

import (
	"errors"
	"fmt"
	"strings"

	"pkgconsole/internal/domain/filter"
	"pkgconsole/internal/filtrage/expr"
)

// ExistenceOp is the unary "has a value" operator.
const ExistenceOp = "?"

// parser is the grammar every filter is parsed with.
var parser = expr.NewParser(expr.WithUnaryOp(ExistenceOp))

// ErrBadFilters is returned when a filter set holds a term that does not
// parse even after sanitizing.
var ErrBadFilters = errors.New("bad filters")

// Parse parses a single filter expression with the filter grammar.
func Parse(value string) (expr.Node, error) {
	return parser.Parse(value)
}

// SanitizeValue returns value unchanged when it parses. Otherwise the whole
// text is wrapped in single quotes, which the matcher strips again, so that
// tokens the grammar rejects (such as "12abc" or "1.2.3") still parse.
func SanitizeValue(value string) (string, error) {
	if _, err := parser.Parse(value); err == nil {
		return value, nil
	}
	wrapped := "'" + value + "'"
	if _, err := parser.Parse(wrapped); err != nil {
		return "", err
	}
	return wrapped, nil
}

// Sanitize sanitizes every term of set into a new set. When any term still
// fails it returns nil and an error wrapping ErrBadFilters; set itself is
// left untouched. Callers should ignore the edit in that case.
func Sanitize(set filter.Set) (filter.Set, error) {
	if set == nil {
		return nil, nil
	}
	out := make(filter.Set, 0, len(set))
	for _, t := range set {
		value, err := SanitizeValue(t.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: %w", ErrBadFilters, t.ID, err)
		}
		out = append(out, filter.Term{ID: t.ID, Value: value})
	}
	return out, nil
}

// isWrapped reports whether s is enclosed in single quotes.
func isWrapped(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'")
}

// isQuoted reports whether s is enclosed in double quotes.
func isQuoted(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)
}

func unwrap(s string) string {
	if isWrapped(s) {
		return s[1 : len(s)-1]
	}
	return s
}

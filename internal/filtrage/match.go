package filtrage

import (
	"strings"

	"pkgconsole/internal/filtrage/expr"
)

// Match reports whether v satisfies node. negate is set when the node sits
// under a `!` and only affects identifier and literal leaves.
//
// Absent and empty cells never satisfy a plain leaf and always satisfy a
// negated one.
func Match(v FieldValue, node expr.Node, negate bool) bool {
	switch n := node.(type) {
	case *expr.Compound:
		for _, child := range n.Body {
			if Match(v, child, false) {
				return true
			}
		}
		return false

	case *expr.Identifier:
		return matchFilterString(v, n.Name, negate)

	case *expr.Literal:
		if isQuoted(n.Raw) {
			return (v.HasValue() && literalText(n) == v.Text()) == !negate
		}
		return matchFilterString(v, n.Raw, negate)

	case *expr.Unary:
		return matchUnary(v, n)

	case *expr.Logical:
		if n.Operator == "||" {
			return Match(v, n.Left, false) || Match(v, n.Right, false)
		}
		return Match(v, n.Left, false) && Match(v, n.Right, false)

	default:
		// Member, This, Call, Binary, Conditional, Array: parsed but not
		// evaluated. See Unsupported.
		return false
	}
}

func matchUnary(v FieldValue, n *expr.Unary) bool {
	switch n.Operator {
	case "!":
		if arg, ok := n.Argument.(*expr.Unary); ok && arg.Operator == ExistenceOp {
			// !? is IS NULL
			return !v.HasValue()
		}
		if n.Argument == nil {
			return malformedSubFilterPassthrough()
		}
		return Match(v, n.Argument, true)
	case ExistenceOp:
		return v.HasValue()
	default:
		return false
	}
}

// malformedSubFilterPassthrough is the result of a `!` with nothing after it.
// Such a term matches every row rather than none.
// TODO: confirm with product whether a dangling `!` should match nothing instead.
func malformedSubFilterPassthrough() bool {
	return true
}

// matchFilterString applies the wildcard rules to name: a leading `$`
// anchors at the start, a trailing `$` at the end, otherwise substring.
func matchFilterString(v FieldValue, name string, negate bool) bool {
	name = strings.ToLower(unwrap(name))
	var test bool
	switch {
	case strings.HasPrefix(name, "$"):
		test = strings.HasPrefix(v.Text(), name[1:])
	case strings.HasSuffix(name, "$"):
		test = strings.HasSuffix(v.Text(), name[:len(name)-1])
	default:
		test = strings.Contains(v.Text(), name)
	}
	return (v.HasValue() && test) == !negate
}

func literalText(n *expr.Literal) string {
	if s, ok := n.Value.(string); ok {
		return strings.ToLower(s)
	}
	return strings.ToLower(n.Raw)
}

// Unsupported lists the kinds under node that Match never evaluates, in
// order of first appearance. A term containing any of them matches nothing
// at that position.
func Unsupported(node expr.Node) []expr.Kind {
	var kinds []expr.Kind
	seen := make(map[expr.Kind]bool)
	expr.Walk(node, func(n expr.Node) bool {
		switch n.Kind() {
		case expr.KindCompound, expr.KindIdentifier, expr.KindLiteral, expr.KindUnary, expr.KindLogical:
			return true
		}
		if !seen[n.Kind()] {
			seen[n.Kind()] = true
			kinds = append(kinds, n.Kind())
		}
		return false
	})
	return kinds
}

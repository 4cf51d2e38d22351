package expr

import "math"

// Tree converts node to nested maps in the jsep JSON shape, each carrying
// a "type" key. A nil node yields nil.
func Tree(node Node) map[string]any {
	if node == nil {
		return nil
	}
	m := map[string]any{"type": node.Kind().String()}
	switch n := node.(type) {
	case *Compound:
		m["body"] = trees(n.Body)
	case *Identifier:
		m["name"] = n.Name
	case *Literal:
		m["value"] = literalValue(n.Value)
		m["raw"] = n.Raw
	case *Unary:
		m["operator"] = n.Operator
		m["argument"] = Tree(n.Argument)
		m["prefix"] = true
	case *Binary:
		m["operator"] = n.Operator
		m["left"] = Tree(n.Left)
		m["right"] = Tree(n.Right)
	case *Logical:
		m["operator"] = n.Operator
		m["left"] = Tree(n.Left)
		m["right"] = Tree(n.Right)
	case *Member:
		m["computed"] = n.Computed
		m["object"] = Tree(n.Object)
		m["property"] = Tree(n.Property)
	case *Call:
		m["callee"] = Tree(n.Callee)
		m["arguments"] = trees(n.Arguments)
	case *Conditional:
		m["test"] = Tree(n.Test)
		m["consequent"] = Tree(n.Consequent)
		m["alternate"] = Tree(n.Alternate)
	case *Array:
		m["elements"] = trees(n.Elements)
	}
	return m
}

func trees(nodes []Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Tree(n))
	}
	return out
}

// literalValue replaces numbers JSON cannot carry with nil.
func literalValue(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}

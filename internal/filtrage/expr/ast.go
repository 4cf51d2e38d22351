// Package expr parses column filter expressions into an abstract syntax tree.
//
// The grammar is a small JavaScript-like expression language: literals,
// identifiers, unary/binary/logical operators, member access, calls, arrays
// and the ternary conditional. Extra unary operators can be registered when a
// Parser is built.
package expr

// Kind identifies the variant of a Node.
type Kind int

const (
	KindCompound Kind = iota
	KindIdentifier
	KindMember
	KindLiteral
	KindThis
	KindCall
	KindUnary
	KindBinary
	KindLogical
	KindConditional
	KindArray
)

var kindNames = [...]string{
	KindCompound:    "Compound",
	KindIdentifier:  "Identifier",
	KindMember:      "MemberExpression",
	KindLiteral:     "Literal",
	KindThis:        "ThisExpression",
	KindCall:        "CallExpression",
	KindUnary:       "UnaryExpression",
	KindBinary:      "BinaryExpression",
	KindLogical:     "LogicalExpression",
	KindConditional: "ConditionalExpression",
	KindArray:       "ArrayExpression",
}

// String returns the grammar name of the kind (e.g. "UnaryExpression").
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Node is a parsed expression. The set of implementations is closed.
type Node interface {
	Kind() Kind
	node()
}

// Compound holds several top-level expressions written side by side.
type Compound struct {
	Body []Node `json:"body"`
}

// Identifier is a bare word.
type Identifier struct {
	Name string `json:"name"`
}

// Literal is a number, string, boolean or null.
// Value holds float64, string, bool or nil; Raw is the source form
// (quotes included for strings).
type Literal struct {
	Value any    `json:"value"`
	Raw   string `json:"raw"`
}

// Unary is a prefix operator. Argument is nil when nothing followed the operator.
type Unary struct {
	Operator string `json:"operator"`
	Argument Node   `json:"argument"`
}

// Binary is any binary operator other than || and &&.
type Binary struct {
	Operator string `json:"operator"`
	Left     Node   `json:"left"`
	Right    Node   `json:"right"`
}

// Logical is || or &&.
type Logical struct {
	Operator string `json:"operator"`
	Left     Node   `json:"left"`
	Right    Node   `json:"right"`
}

// Member is object.property or object[property].
type Member struct {
	Computed bool `json:"computed"`
	Object   Node `json:"object"`
	Property Node `json:"property"`
}

// This is the `this` keyword.
type This struct{}

// Call is callee(arguments...).
type Call struct {
	Callee    Node   `json:"callee"`
	Arguments []Node `json:"arguments"`
}

// Conditional is test ? consequent : alternate.
type Conditional struct {
	Test       Node `json:"test"`
	Consequent Node `json:"consequent"`
	Alternate  Node `json:"alternate"`
}

// Array is [elements...].
type Array struct {
	Elements []Node `json:"elements"`
}

func (*Compound) Kind() Kind    { return KindCompound }
func (*Identifier) Kind() Kind  { return KindIdentifier }
func (*Literal) Kind() Kind     { return KindLiteral }
func (*Unary) Kind() Kind       { return KindUnary }
func (*Binary) Kind() Kind      { return KindBinary }
func (*Logical) Kind() Kind     { return KindLogical }
func (*Member) Kind() Kind      { return KindMember }
func (*This) Kind() Kind        { return KindThis }
func (*Call) Kind() Kind        { return KindCall }
func (*Conditional) Kind() Kind { return KindConditional }
func (*Array) Kind() Kind       { return KindArray }

func (*Compound) node()    {}
func (*Identifier) node()  {}
func (*Literal) node()     {}
func (*Unary) node()       {}
func (*Binary) node()      {}
func (*Logical) node()     {}
func (*Member) node()      {}
func (*This) node()        {}
func (*Call) node()        {}
func (*Conditional) node() {}
func (*Array) node()       {}

// Walk calls fn for node and every node below it, depth first.
// Children of a node are skipped when fn returns false.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Compound:
		for _, c := range n.Body {
			Walk(c, fn)
		}
	case *Unary:
		Walk(n.Argument, fn)
	case *Binary:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Logical:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Member:
		Walk(n.Object, fn)
		Walk(n.Property, fn)
	case *Call:
		Walk(n.Callee, fn)
		for _, a := range n.Arguments {
			Walk(a, fn)
		}
	case *Conditional:
		Walk(n.Test, fn)
		Walk(n.Consequent, fn)
		Walk(n.Alternate, fn)
	case *Array:
		for _, e := range n.Elements {
			Walk(e, fn)
		}
	}
}

package filtrage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgconsole/internal/filtrage/expr"
)

func mustParse(t *testing.T, text string) expr.Node {
	t.Helper()
	node, err := Parse(text)
	require.NoError(t, err, "parse %q", text)
	return node
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name  string
		field FieldValue
		expr  string
		want  bool
	}{
		{"substring", Present("Inactive"), "Active", true},
		{"substring is case insensitive", Present("ARCHIVED"), "chiv", true},
		{"substring miss", Present("Archived"), "Active", false},
		{"exact hit", Present("Active"), `"Active"`, true},
		{"exact miss on superstring", Present("Inactive"), `"Active"`, false},
		{"negated exact", Present("Inactive"), `!"Active"`, true},
		{"prefix", Present("Archived"), "$Arc", true},
		{"prefix miss", Present("Inarchived"), "$Arc", false},
		{"suffix", Present("Archived"), "ed$", true},
		{"suffix miss", Present("Edited version"), "ed$", false},
		{"negation", Present("Inactive"), "!Active", false},
		{"negation keeps non matching", Present("Archived"), "!Active", true},
		{"existence on text", Present("x"), "?", true},
		{"existence on empty", Present(""), "?", false},
		{"existence on absent", Absent(), "?", false},
		{"not existence on text", Present("x"), "!?", false},
		{"not existence on empty", Present(""), "!?", true},
		{"not existence on absent", Absent(), "!?", true},
		{"numeric literal uses raw text", Present("v1042"), "42", true},
		{"single quote wrapped literal", Present("build 12abc"), "'12abc'", true},
		{"compound is OR", Present("archived"), "foo arc", true},
		{"compound miss", Present("archived"), "foo bar", false},
		{"logical or", Present("active"), "$arc || $act", true},
		{"logical and", Present("inactive"), "act && !inact", false},
		{"logical and hit", Present("active"), "act && !inact", true},
		{"keyword literal", Present("true"), "true", true},
		{"malformed negation passes through", Present("anything"), "!", true},
		{"malformed negation on absent", Absent(), "!", true},
		{"other unary operators never match", Present("5"), "-5", false},
		{"binary expression never matches", Present("foo-bar"), "foo-bar", false},
		{"member expression never matches", Present("a.b"), "a.b", false},
		{"call expression in compound", Present("abc"), "abc f(x)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.field, mustParse(t, tt.expr), false)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_NullAsymmetry(t *testing.T) {
	leaves := []string{"x", `"x"`, "$x", "x$", "'1.2'", "42"}

	for _, leaf := range leaves {
		t.Run(leaf, func(t *testing.T) {
			node := mustParse(t, leaf)
			for _, v := range []FieldValue{Absent(), Present("")} {
				assert.False(t, Match(v, node, false), "plain term must not match %s", v)
				assert.True(t, Match(v, node, true), "negated term must match %s", v)
			}

			negated := mustParse(t, "!"+leaf)
			assert.True(t, Match(Absent(), negated, false))
		})
	}
}

func TestMatch_NegateIsNotInheritedByLogical(t *testing.T) {
	node := mustParse(t, "!(a || b)")
	assert.True(t, Match(Present("a"), node, false))
	assert.False(t, Match(Present("c"), node, false))
}

func TestUnsupported(t *testing.T) {
	assert.Empty(t, Unsupported(mustParse(t, "a || !b, ?")))
	assert.Equal(t, []expr.Kind{expr.KindBinary}, Unsupported(mustParse(t, "foo-bar")))
	assert.Equal(t,
		[]expr.Kind{expr.KindCall, expr.KindMember},
		Unsupported(mustParse(t, "f(x) || a.b || g(y)")),
	)
}

func TestFieldFromCell(t *testing.T) {
	s := "Hello"
	var nilStr *string

	tests := []struct {
		name string
		in   any
		want FieldValue
	}{
		{"nil", nil, Absent()},
		{"nil pointer", nilStr, Absent()},
		{"string", "Active", Present("active")},
		{"empty string", "", Present("")},
		{"string pointer", &s, Present("hello")},
		{"int", 1042, Present("1042")},
		{"zero is a value", 0, Present("0")},
		{"bool", true, Present("true")},
		{"cell", testCell{"Foo", " ", testCell{"Bar"}, nil, 7}, Present("foo bar7")},
		{"empty cell", testCell{}, Present("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldFromCell(tt.in))
		})
	}
}

func TestFieldValue_States(t *testing.T) {
	assert.True(t, Absent().IsAbsent())
	assert.False(t, Absent().HasValue())
	assert.True(t, Present("").IsEmpty())
	assert.False(t, Present("").IsAbsent())
	assert.True(t, Present("A").HasValue())
	assert.Equal(t, "a", Present("A").Text())
}

type testCell []any

func (c testCell) Children() []any { return c }

func TestFieldFromCell_CyclicCellIsBounded(t *testing.T) {
	cycle := testCell{"a", nil}
	cycle[1] = cycle

	v := FieldFromCell(cycle)
	assert.Equal(t, strings.Repeat("a", MaxCellDepth), v.Text())
}

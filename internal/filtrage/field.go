package filtrage

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

type presence uint8

const (
	absent presence = iota
	presentEmpty
	presentText
)

// FieldValue is the comparable text of one cell: absent, present but empty,
// or present with text. The text is lower-cased.
type FieldValue struct {
	text  string
	state presence
}

// Absent is the value of a missing or null cell.
func Absent() FieldValue {
	return FieldValue{}
}

// Present wraps cell text. An empty string yields a present-empty value.
func Present(text string) FieldValue {
	if text == "" {
		return FieldValue{state: presentEmpty}
	}
	return FieldValue{text: strings.ToLower(text), state: presentText}
}

// IsAbsent reports whether the cell had no value at all.
func (v FieldValue) IsAbsent() bool { return v.state == absent }

// IsEmpty reports whether the cell was present but empty.
func (v FieldValue) IsEmpty() bool { return v.state == presentEmpty }

// HasValue reports whether the cell holds non-empty text.
func (v FieldValue) HasValue() bool { return v.state == presentText }

// Text returns the lower-cased text, "" unless HasValue.
func (v FieldValue) Text() string { return v.text }

func (v FieldValue) String() string {
	switch v.state {
	case absent:
		return "<absent>"
	case presentEmpty:
		return "<empty>"
	default:
		return v.text
	}
}

// Row is one record of a result grid keyed by column key.
type Row map[string]any

// Cell is a pre-rendered cell whose visible text is spread over child nodes
// (strings, nested cells or scalars).
type Cell interface {
	Children() []any
}

// FieldFromCell extracts the comparable value of a cell.
func FieldFromCell(val any) FieldValue {
	if isNil(val) {
		return Absent()
	}
	if c, ok := val.(Cell); ok {
		return Present(cellText(c, 0))
	}
	return Present(scalarText(val))
}

// MaxCellDepth bounds how deep nested cells are read. Text below it is
// ignored, which also stops cells that contain themselves.
const MaxCellDepth = 32

func cellText(c Cell, depth int) string {
	if depth >= MaxCellDepth {
		return ""
	}
	var b strings.Builder
	for _, child := range c.Children() {
		if isNil(child) {
			continue
		}
		if nested, ok := child.(Cell); ok {
			b.WriteString(cellText(nested, depth+1))
			continue
		}
		b.WriteString(scalarText(child))
	}
	return b.String()
}

func scalarText(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case *string:
		return *v
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func isNil(val any) bool {
	if val == nil {
		return true
	}
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

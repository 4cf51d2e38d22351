package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// binaryPrecedence maps every binary operator to its binding power.
// Higher binds tighter.
var binaryPrecedence = map[string]int{
	"||": 1, "&&": 2, "|": 3, "^": 4, "&": 5,
	"==": 6, "!=": 6, "===": 6, "!==": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

var defaultUnaryOps = []string{"-", "!", "~", "+"}

var keywordLiterals = map[string]any{
	"true":  true,
	"false": false,
	"null":  nil,
}

// ParseError reports text that does not conform to the grammar.
type ParseError struct {
	Message string
	Index   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at character %d", e.Message, e.Index)
}

// Option configures a Parser.
type Option func(*Parser)

// WithUnaryOp registers an additional prefix operator.
func WithUnaryOp(op string) Option {
	return func(p *Parser) {
		if op == "" {
			return
		}
		p.unaryOps[op] = struct{}{}
		if n := len([]rune(op)); n > p.maxUnaryLen {
			p.maxUnaryLen = n
		}
	}
}

// Parser turns expression text into a Node tree.
// A Parser is read-only after NewParser returns and may be shared.
type Parser struct {
	unaryOps     map[string]struct{}
	maxUnaryLen  int
	maxBinaryLen int
}

// NewParser builds a parser for the base grammar plus any registered operators.
func NewParser(opts ...Option) *Parser {
	p := &Parser{unaryOps: make(map[string]struct{}, len(defaultUnaryOps))}
	for _, op := range defaultUnaryOps {
		p.unaryOps[op] = struct{}{}
		p.maxUnaryLen = max(p.maxUnaryLen, len(op))
	}
	for op := range binaryPrecedence {
		p.maxBinaryLen = max(p.maxBinaryLen, len(op))
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses text. Several top-level expressions (separated by spaces,
// commas or semicolons) yield a *Compound; exactly one is returned as is.
func (p *Parser) Parse(text string) (Node, error) {
	s := &scanner{p: p, src: []rune(text)}
	return s.parseAll()
}

// scanner holds the cursor for a single Parse call.
type scanner struct {
	p   *Parser
	src []rune
	pos int
}

func (s *scanner) errorf(format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Index: s.pos}
}

func (s *scanner) peek() rune {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) skipSpaces() {
	for !s.eof() {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

// lookahead returns up to n runes from the cursor.
func (s *scanner) lookahead(n int) string {
	end := min(s.pos+n, len(s.src))
	return string(s.src[s.pos:end])
}

func (s *scanner) parseAll() (Node, error) {
	var nodes []Node
	for !s.eof() {
		switch s.peek() {
		case ';', ',':
			s.pos++
			continue
		}
		node, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
			continue
		}
		if !s.eof() {
			return nil, s.errorf("Unexpected %q", string(s.peek()))
		}
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return &Compound{Body: nodes}, nil
}

// parseExpression parses a binary expression and an optional ternary tail.
func (s *scanner) parseExpression() (Node, error) {
	test, err := s.parseBinary()
	if err != nil {
		return nil, err
	}
	s.skipSpaces()
	if s.peek() != '?' {
		return test, nil
	}

	s.pos++
	consequent, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	if consequent == nil {
		return nil, s.errorf("Expected expression")
	}
	s.skipSpaces()
	if s.peek() != ':' {
		return nil, s.errorf("Expected :")
	}
	s.pos++
	alternate, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	if alternate == nil {
		return nil, s.errorf("Expected expression")
	}
	return &Conditional{Test: test, Consequent: consequent, Alternate: alternate}, nil
}

// binaryOp consumes the longest binary operator at the cursor, if any.
func (s *scanner) binaryOp() string {
	s.skipSpaces()
	candidate := s.lookahead(s.p.maxBinaryLen)
	for n := len(candidate); n > 0; n-- {
		if _, ok := binaryPrecedence[candidate[:n]]; ok {
			s.pos += n
			return candidate[:n]
		}
	}
	return ""
}

type stackEntry struct {
	node Node
	op   string
	prec int
}

// parseBinary implements precedence climbing over a flat operand/operator stack.
func (s *scanner) parseBinary() (Node, error) {
	left, err := s.parseToken()
	if err != nil {
		return nil, err
	}
	op := s.binaryOp()
	if op == "" {
		return left, nil
	}
	if left == nil {
		return nil, s.errorf("Expected expression before %s", op)
	}
	right, err := s.parseToken()
	if err != nil {
		return nil, err
	}
	if right == nil {
		return nil, s.errorf("Expected expression after %s", op)
	}

	stack := []stackEntry{{node: left}, {op: op, prec: binaryPrecedence[op]}, {node: right}}
	for {
		op = s.binaryOp()
		if op == "" {
			break
		}
		prec := binaryPrecedence[op]
		for len(stack) > 2 && prec <= stack[len(stack)-2].prec {
			r := stack[len(stack)-1].node
			o := stack[len(stack)-2].op
			l := stack[len(stack)-3].node
			stack = append(stack[:len(stack)-3], stackEntry{node: newBinary(o, l, r)})
		}
		next, err := s.parseToken()
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, s.errorf("Expected expression after %s", op)
		}
		stack = append(stack, stackEntry{op: op, prec: prec}, stackEntry{node: next})
	}

	i := len(stack) - 1
	node := stack[i].node
	for i > 1 {
		node = newBinary(stack[i-1].op, stack[i-2].node, node)
		i -= 2
	}
	return node, nil
}

func newBinary(op string, left, right Node) Node {
	if op == "||" || op == "&&" {
		return &Logical{Operator: op, Left: left, Right: right}
	}
	return &Binary{Operator: op, Left: left, Right: right}
}

// parseToken parses a single operand. It returns a nil Node, not an error,
// when nothing at the cursor can start an operand.
func (s *scanner) parseToken() (Node, error) {
	s.skipSpaces()
	ch := s.peek()
	switch {
	case s.eof():
		return nil, nil
	case isDecimalDigit(ch) || ch == '.':
		return s.parseNumber()
	case ch == '\'' || ch == '"':
		return s.parseString()
	case ch == '[':
		s.pos++
		elems, err := s.parseArguments(']')
		if err != nil {
			return nil, err
		}
		return &Array{Elements: elems}, nil
	}

	candidate := s.lookahead(s.p.maxUnaryLen)
	for n := len([]rune(candidate)); n > 0; n-- {
		op := string([]rune(candidate)[:n])
		if _, ok := s.p.unaryOps[op]; !ok {
			continue
		}
		s.pos += n
		arg, err := s.parseToken()
		if err != nil {
			return nil, err
		}
		return &Unary{Operator: op, Argument: arg}, nil
	}

	if isIdentifierStart(ch) || ch == '(' {
		return s.parseVariable()
	}
	return nil, nil
}

func (s *scanner) parseNumber() (Node, error) {
	var b strings.Builder
	for isDecimalDigit(s.peek()) {
		b.WriteRune(s.src[s.pos])
		s.pos++
	}
	if s.peek() == '.' {
		b.WriteRune('.')
		s.pos++
		for isDecimalDigit(s.peek()) {
			b.WriteRune(s.src[s.pos])
			s.pos++
		}
	}
	if ch := s.peek(); ch == 'e' || ch == 'E' {
		b.WriteRune(ch)
		s.pos++
		if ch = s.peek(); ch == '+' || ch == '-' {
			b.WriteRune(ch)
			s.pos++
		}
		for isDecimalDigit(s.peek()) {
			b.WriteRune(s.src[s.pos])
			s.pos++
		}
		if !isDecimalDigit(s.src[s.pos-1]) {
			return nil, s.errorf("Expected exponent (%s%s)", b.String(), s.lookahead(1))
		}
	}

	number := b.String()
	ch := s.peek()
	if !s.eof() && isIdentifierStart(ch) {
		return nil, s.errorf("Variable names cannot start with a number (%s%c)", number, ch)
	}
	if ch == '.' {
		return nil, s.errorf("Unexpected period")
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		value = math.NaN()
	}
	return &Literal{Value: value, Raw: number}, nil
}

func (s *scanner) parseString() (Node, error) {
	start := s.pos
	quote := s.src[s.pos]
	s.pos++
	var b strings.Builder
	closed := false
	for !s.eof() {
		ch := s.src[s.pos]
		s.pos++
		if ch == quote {
			closed = true
			break
		}
		if ch != '\\' {
			b.WriteRune(ch)
			continue
		}
		if s.eof() {
			break
		}
		ch = s.src[s.pos]
		s.pos++
		switch ch {
		case 'n':
			b.WriteRune('\n')
		case 'r':
			b.WriteRune('\r')
		case 't':
			b.WriteRune('\t')
		case 'b':
			b.WriteRune('\b')
		case 'f':
			b.WriteRune('\f')
		case 'v':
			b.WriteRune('\v')
		default:
			b.WriteRune(ch)
		}
	}
	if !closed {
		return nil, s.errorf("Unclosed quote after %q", b.String())
	}
	// Raw keeps the source text, escapes included.
	return &Literal{Value: b.String(), Raw: string(s.src[start:s.pos])}, nil
}

func (s *scanner) parseIdentifier() (Node, error) {
	start := s.pos
	if s.eof() || !isIdentifierStart(s.peek()) {
		return nil, s.errorf("Unexpected %s", s.lookahead(1))
	}
	s.pos++
	for !s.eof() && isIdentifierPart(s.peek()) {
		s.pos++
	}
	name := string(s.src[start:s.pos])
	if v, ok := keywordLiterals[name]; ok {
		return &Literal{Value: v, Raw: name}, nil
	}
	if name == "this" {
		return &This{}, nil
	}
	return &Identifier{Name: name}, nil
}

// parseVariable parses an identifier or group followed by any chain of
// .member, [computed] and (call) suffixes.
func (s *scanner) parseVariable() (Node, error) {
	var (
		node Node
		err  error
	)
	if s.peek() == '(' {
		node, err = s.parseGroup()
	} else {
		node, err = s.parseIdentifier()
	}
	if err != nil {
		return nil, err
	}

	s.skipSpaces()
	for ch := s.peek(); ch == '.' || ch == '[' || ch == '('; ch = s.peek() {
		s.pos++
		switch ch {
		case '.':
			s.skipSpaces()
			prop, err := s.parseIdentifier()
			if err != nil {
				return nil, err
			}
			node = &Member{Object: node, Property: prop}
		case '[':
			prop, err := s.parseExpression()
			if err != nil {
				return nil, err
			}
			if prop == nil {
				return nil, s.errorf("Expected expression")
			}
			s.skipSpaces()
			if s.peek() != ']' {
				return nil, s.errorf("Unclosed [")
			}
			s.pos++
			node = &Member{Computed: true, Object: node, Property: prop}
		case '(':
			args, err := s.parseArguments(')')
			if err != nil {
				return nil, err
			}
			node = &Call{Callee: node, Arguments: args}
		}
		s.skipSpaces()
	}
	return node, nil
}

func (s *scanner) parseGroup() (Node, error) {
	s.pos++
	node, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, s.errorf("Expected expression")
	}
	s.skipSpaces()
	if s.peek() != ')' {
		return nil, s.errorf("Unclosed (")
	}
	s.pos++
	return node, nil
}

// parseArguments parses a comma separated list up to and including term.
func (s *scanner) parseArguments(term rune) ([]Node, error) {
	var args []Node
	for !s.eof() {
		s.skipSpaces()
		switch ch := s.peek(); {
		case ch == term:
			s.pos++
			return args, nil
		case ch == ',':
			s.pos++
		default:
			node, err := s.parseExpression()
			if err != nil {
				return nil, err
			}
			if node == nil {
				return nil, s.errorf("Expected comma")
			}
			args = append(args, node)
		}
	}
	return nil, s.errorf("Expected %c", term)
}

func isDecimalDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentifierStart(ch rune) bool {
	if ch == '$' || ch == '_' || (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') {
		return true
	}
	if ch >= 128 {
		_, isOp := binaryPrecedence[string(ch)]
		return !isOp
	}
	return false
}

func isIdentifierPart(ch rune) bool {
	return isIdentifierStart(ch) || isDecimalDigit(ch)
}

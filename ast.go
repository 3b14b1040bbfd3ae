package chimera

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Node is implemented by all AST nodes. It provides access to position
// information for error reporting and formatting.
type Node interface {
	Span() Span
}

// Span is a half-open source range used for error reporting and for the
// round-trip (format -> parse -> compare) testable property.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// Script is the root of a parsed ChimeraScript file: one or more top-level
// cases.
type Script struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Cases  []*Function    `parser:"@@+"`
}

func (s *Script) Span() Span { return Span{Start: s.Pos, End: s.EndPos} }

// Decorator is a `name` or `name=value` annotation attached to a case, e.g.
// `test` or `expected-failure`.
type Decorator struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Key    string         `parser:"@Ident"`
	Value  *string        `parser:"('=' @Ident)?"`
}

func (d *Decorator) Span() Span { return Span{Start: d.Pos, End: d.EndPos} }

// Function is a named, bracketed case. It may be a top-level test case, a
// nested helper/grouping case, or both, distinguished only by its
// decorators. Only the test decorator of an outer case is inherited by the
// cases nested within it; every other decorator, expected-failure included,
// binds only to the exact case it decorates.
type Function struct {
	Pos        lexer.Position `parser:""`
	EndPos     lexer.Position `parser:""`
	Tokens     []lexer.Token  `parser:""`
	Decorators []*Decorator   `parser:"('[' @@ (',' @@)* ','? ']')?"`
	Name       string         `parser:"'case' @Ident '(' ')'"`
	Block      *Block         `parser:"@@"`
}

func (f *Function) Span() Span { return Span{Start: f.Pos, End: f.EndPos} }

// HasDecorator reports whether the case carries a bare decorator with the
// given key (e.g. "test", "expected-failure").
func (f *Function) HasDecorator(key string) bool {
	for _, d := range f.Decorators {
		if d.Key == key {
			return true
		}
	}

	return false
}

// DecoratorValue returns the value of a `key=value` decorator, if present.
func (f *Function) DecoratorValue(key string) (string, bool) {
	for _, d := range f.Decorators {
		if d.Key == key && d.Value != nil {
			return *d.Value, true
		}
	}

	return "", false
}

// Block is the brace-delimited body of a Function: interleaved statements,
// nested cases, and teardown blocks, in source order.
type Block struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Items  []*BlockItem   `parser:"'{' @@* '}' ';'?"`
}

func (b *Block) Span() Span { return Span{Start: b.Pos, End: b.EndPos} }

// NestedCases returns the cases declared directly within this block.
func (b *Block) NestedCases() []*Function {
	var out []*Function

	for _, item := range b.Items {
		if item.Nested != nil {
			out = append(out, item.Nested)
		}
	}

	return out
}

// Statements returns the non-teardown, non-nested-case statements in this
// block, in source order.
func (b *Block) Statements() []*Statement {
	var out []*Statement

	for _, item := range b.Items {
		if item.Stmt != nil {
			out = append(out, item.Stmt)
		}
	}

	return out
}

// TeardownStatements concatenates every TEARDOWN block's statements found
// directly in this block, in source order. A case with multiple teardown
// blocks contributes all of their statements to a single teardown stack.
func (b *Block) TeardownStatements() []*Statement {
	var out []*Statement

	for _, item := range b.Items {
		if item.Teardown != nil {
			out = append(out, item.Teardown.Statements...)
		}
	}

	return out
}

// BlockItem is one element of a Block: a teardown block, a nested case, or
// a statement. Order here matters only for disambiguation (each
// alternative has a disjoint leading token), not precedence.
type BlockItem struct {
	Pos      lexer.Position `parser:""`
	EndPos   lexer.Position `parser:""`
	Tokens   []lexer.Token  `parser:""`
	Teardown *Teardown      `parser:"@@"`
	Nested   *Function      `parser:"| @@"`
	Stmt     *Statement     `parser:"| @@"`
}

func (b *BlockItem) Span() Span { return Span{Start: b.Pos, End: b.EndPos} }

// Teardown holds the statements of one `TEARDOWN { ... }` block.
type Teardown struct {
	Pos        lexer.Position `parser:""`
	EndPos     lexer.Position `parser:""`
	Tokens     []lexer.Token  `parser:""`
	Statements []*Statement   `parser:"'TEARDOWN' '{' @@* '}'"`
}

func (t *Teardown) Span() Span { return Span{Start: t.Pos, End: t.EndPos} }

// Statement is one semicolon-terminated instruction: an assignment, an
// assertion, a print, or a bare expression evaluated for effect.
type Statement struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Assign *Assign        `parser:"@@ ';'"`
	Assert *Assert        `parser:"| @@ ';'"`
	Print  *Print         `parser:"| @@ ';'"`
	Expr   *Expression    `parser:"| @@ ';'"`
}

func (s *Statement) Span() Span { return Span{Start: s.Pos, End: s.EndPos} }

// Assign binds the result of evaluating an Expression to a variable name.
type Assign struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Name   string         `parser:"'var' @Ident '='"`
	Value  *Expression    `parser:"@@"`
}

func (a *Assign) Span() Span { return Span{Start: a.Pos, End: a.EndPos} }

// Print evaluates a Value and writes its display form to the runner's
// output stream.
type Print struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Value  *Value         `parser:"'PRINT' @@"`
}

func (p *Print) Span() Span { return Span{Start: p.Pos, End: p.EndPos} }

// Assert evaluates an AssertOp over two Values (optionally negated) and
// records a pass/fail result, with an optional custom failure message.
type Assert struct {
	Pos     lexer.Position `parser:""`
	EndPos  lexer.Position `parser:""`
	Tokens  []lexer.Token  `parser:""`
	Negated bool           `parser:"'ASSERT' @'NOT'?"`
	Op      string         `parser:"@('EQUALS'|'GTE'|'GT'|'LTE'|'LT'|'STATUS'|'LENGTH'|'CONTAINS')"`
	Lhs     *Value         `parser:"@@"`
	Rhs     *Value         `parser:"@@"`
	Message *StringLit     `parser:"@@?"`
}

func (a *Assert) Span() Span { return Span{Start: a.Pos, End: a.EndPos} }

// Expression is the right-hand side of an Assign or a bare
// expression-statement: an HTTP call, a literal, a list operation, or an
// explicitly tagged format string.
type Expression struct {
	Pos     lexer.Position `parser:""`
	EndPos  lexer.Position `parser:""`
	Tokens  []lexer.Token  `parser:""`
	Http    *HttpCall      `parser:"@@"`
	Literal *Literal       `parser:"| 'LITERAL' @@"`
	List    *ListOp        `parser:"| 'LIST' @@"`
	Format  *StringLit     `parser:"| 'FORMAT_STR' @@"`
}

func (e *Expression) Span() Span { return Span{Start: e.Pos, End: e.EndPos} }

// Literal is a scalar constant: null, a number, a boolean, or a string
// (which may itself carry interpolation, but is not required to).
type Literal struct {
	Pos     lexer.Position `parser:""`
	EndPos  lexer.Position `parser:""`
	Tokens  []lexer.Token  `parser:""`
	Null    bool           `parser:"@('null'|'Null'|'NULL')"`
	Number  *NumberLit     `parser:"| @@"`
	Boolean *BoolLit       `parser:"| @@"`
	Str     *StringLit     `parser:"| @@"`
}

func (l *Literal) Span() Span { return Span{Start: l.Pos, End: l.EndPos} }

// Value is used wherever a scalar or variable reference is expected:
// assert operands, HTTP query/body/header/option values, list items.
type Value struct {
	Pos     lexer.Position `parser:""`
	EndPos  lexer.Position `parser:""`
	Tokens  []lexer.Token  `parser:""`
	Null    bool           `parser:"@('null'|'Null'|'NULL')"`
	Number  *NumberLit     `parser:"| @@"`
	Boolean *BoolLit       `parser:"| @@"`
	Str     *StringLit     `parser:"| @@"`
	Var     *VariableRef   `parser:"| @@"`
}

func (v *Value) Span() Span { return Span{Start: v.Pos, End: v.EndPos} }

// VariableRef is a parenthesized dotted path naming a variable, optionally
// followed by field accesses: `(name)`, `(response.body.id)`. A path
// component after the first may also be a bare digit sequence, indexing
// into a list value: `(my_list.2)`.
type VariableRef struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Parts  []string       `parser:"'(' @(Ident|Number) ('.' @(Ident|Number))* ')'"`
}

func (v *VariableRef) Span() Span { return Span{Start: v.Pos, End: v.EndPos} }

func (v *VariableRef) String() string {
	return "(" + strings.Join(v.Parts, ".") + ")"
}

// NumberLit is a parsed numeric literal: integers parse into a signed
// 64-bit int, everything with a '.' or exponent into a float64.
type NumberLit struct {
	Pos     lexer.Position `parser:""`
	EndPos  lexer.Position `parser:""`
	Raw     string         `parser:"@Number"`
	IsFloat bool
	Int     int64
	Float   float64
}

func (n *NumberLit) Span() Span { return Span{Start: n.Pos, End: n.EndPos} }

// decode parses the raw lexed number text into either an int64 or a
// float64. It runs in the literal-resolution pass after parsing, once the
// node's source position is known.
func (n *NumberLit) decode() error {
	if strings.ContainsAny(n.Raw, ".eE") {
		f, err := strconv.ParseFloat(n.Raw, 64)
		if err != nil {
			return &ParseError{Pos: n.Pos, Msg: "invalid float literal " + n.Raw}
		}

		n.IsFloat = true
		n.Float = f

		return nil
	}

	i, err := strconv.ParseInt(n.Raw, 10, 64)
	if err != nil {
		return &ParseError{Pos: n.Pos, Msg: "invalid integer literal " + n.Raw}
	}

	n.Int = i

	return nil
}

func (n *NumberLit) String() string {
	if n.IsFloat {
		return strconv.FormatFloat(n.Float, 'g', -1, 64)
	}

	return strconv.FormatInt(n.Int, 10)
}

// BoolLit is a parsed boolean literal, admitting both Title and lower case.
// Value is filled by the literal-resolution pass from the raw token text.
type BoolLit struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Raw    string         `parser:"@('true'|'True'|'false'|'False')"`
	Value  bool
}

func (b *BoolLit) Span() Span { return Span{Start: b.Pos, End: b.EndPos} }

func (b *BoolLit) decode() { b.Value = b.Raw == "true" || b.Raw == "True" }

// HttpCall is a request expression: a verb, a path, optional query
// parameters, body fields, headers, and client options, each a flat
// ordered list of name/Value pairs (except path and verb).
type HttpCall struct {
	Pos     lexer.Position `parser:""`
	EndPos  lexer.Position `parser:""`
	Tokens  []lexer.Token  `parser:""`
	Verb    string         `parser:"@('GET'|'PUT'|'POST'|'DELETE')"`
	Path    *HttpPath      `parser:"@@"`
	Query   []*HttpParam   `parser:"('?' @@ ('&' @@)*)?"`
	Body    []*HttpParam   `parser:"@@*"`
	Headers []*HttpHeader  `parser:"@@*"`
	Options []*HttpOption  `parser:"@@*"`
}

func (h *HttpCall) Span() Span { return Span{Start: h.Pos, End: h.EndPos} }

// HttpPath is a sequence of one or more slash-introduced segment groups;
// each group is one or more adjacent parts (identifier text or variable
// interpolation) concatenated with no separator between them.
type HttpPath struct {
	Pos      lexer.Position      `parser:""`
	EndPos   lexer.Position      `parser:""`
	Tokens   []lexer.Token       `parser:""`
	Segments []*PathSegmentGroup `parser:"@@+"`
}

func (p *HttpPath) Span() Span { return Span{Start: p.Pos, End: p.EndPos} }

// PathSegmentGroup is everything between one '/' and the next.
type PathSegmentGroup struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Parts  []*PathPart    `parser:"'/' @@+"`
}

func (p *PathSegmentGroup) Span() Span { return Span{Start: p.Pos, End: p.EndPos} }

// PathPart is one fragment of a path segment: literal identifier text or an
// interpolated variable. The negative lookahead keeps a following query or
// body parameter name (Ident '='), header name (Ident ':'), or option name
// (Ident '=>') from being swallowed into the path.
type PathPart struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Ident  string         `parser:"@Ident (?! '=' | ':' | '=>')"`
	Var    *VariableRef   `parser:"| @@"`
}

func (p *PathPart) Span() Span { return Span{Start: p.Pos, End: p.EndPos} }

// HttpParam is a `name = Value` pair, used for both query parameters and
// body fields.
type HttpParam struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Name   string         `parser:"@Ident '='"`
	Value  *Value         `parser:"@@"`
}

func (p *HttpParam) Span() Span { return Span{Start: p.Pos, End: p.EndPos} }

// HttpHeader is a `name: Value` pair.
type HttpHeader struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Name   string         `parser:"@Ident ':'"`
	Value  *Value         `parser:"@@"`
}

func (h *HttpHeader) Span() Span { return Span{Start: h.Pos, End: h.EndPos} }

// HttpOption is a `name => Value` pair configuring client dispatch (e.g.
// timeouts, retry policy) rather than request content.
type HttpOption struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Name   string         `parser:"@Ident '=>'"`
	Value  *Value         `parser:"@@"`
}

func (o *HttpOption) Span() Span { return Span{Start: o.Pos, End: o.EndPos} }

// ListOp is either a list literal construction or a mutating/reading
// command against an existing list variable.
type ListOp struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	New    *NewList       `parser:"@@"`
	Cmd    *ListCmd       `parser:"| @@"`
}

func (l *ListOp) Span() Span { return Span{Start: l.Pos, End: l.EndPos} }

// NewList constructs a list value from zero or more items.
type NewList struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Items  []*Value       `parser:"'NEW' '[' (@@ (',' @@)*)? ']'"`
}

func (n *NewList) Span() Span { return Span{Start: n.Pos, End: n.EndPos} }

// ListCmd applies LENGTH, APPEND, REMOVE, or POP to an existing list
// variable. Arg is the appended value for APPEND and the index for REMOVE;
// it is absent for LENGTH and POP.
type ListCmd struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
	Op     string         `parser:"@('LENGTH'|'APPEND'|'REMOVE'|'POP')"`
	Var    *VariableRef   `parser:"@@"`
	Arg    *Value         `parser:"@@?"`
}

func (l *ListCmd) Span() Span { return Span{Start: l.Pos, End: l.EndPos} }

// StringLit is a quoted string token decoded into literal-text and
// variable-reference fragments. A string with zero variable fragments is a
// plain literal; one or more and it behaves as a format string. Both the
// bare-literal and FORMAT_STR-tagged spellings use this same type, since
// the two differ only by whether the grammar required an explicit keyword,
// not by content.
type StringLit struct {
	Pos       lexer.Position `parser:""`
	EndPos    lexer.Position `parser:""`
	Raw       string         `parser:"@String"`
	Fragments []StringFragment
}

func (s *StringLit) Span() Span { return Span{Start: s.Pos, End: s.EndPos} }

// StringFragment is either literal text (Var == nil) or an interpolated
// variable reference.
type StringFragment struct {
	Literal string
	Var     *VariableRef
}

// IsPlainLiteral reports whether the string has no interpolation points.
func (s *StringLit) IsPlainLiteral() bool {
	for _, f := range s.Fragments {
		if f.Var != nil {
			return false
		}
	}

	return true
}

// PlainText returns the decoded text of a string with no interpolation
// fragments. It panics if the string has variable fragments; callers
// should check IsPlainLiteral first.
func (s *StringLit) PlainText() string {
	var b strings.Builder

	for _, f := range s.Fragments {
		if f.Var != nil {
			panic("chimerascript: PlainText called on an interpolated string")
		}

		b.WriteString(f.Literal)
	}

	return b.String()
}

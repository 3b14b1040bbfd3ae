package chimera

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// literalVisitor receives every literal node reachable from a Script during
// the resolution walk.
type literalVisitor struct {
	str     func(*StringLit)
	num     func(*NumberLit)
	boolean func(*BoolLit)
}

// resolveLiterals walks a parsed Script and decodes every literal's raw
// token text: StringLit Raw into Fragments, NumberLit Raw into an int64 or
// float64, BoolLit Raw into its normalized bool. participle builds the
// typed tree first, then this second pass fills in the pieces that don't
// fit cleanly into grammar captures.
func resolveLiterals(script *Script) error {
	var firstErr error

	record := func(err error) {
		if firstErr == nil && err != nil {
			firstErr = err
		}
	}

	walkScript(script, &literalVisitor{
		str: func(s *StringLit) {
			if firstErr != nil {
				return
			}

			frags, err := decodeChimeraString(s.Raw, s.Pos)
			if err != nil {
				firstErr = err

				return
			}

			s.Fragments = frags
		},
		num:     func(n *NumberLit) { record(n.decode()) },
		boolean: func(b *BoolLit) { b.decode() },
	})

	return firstErr
}

// decodeChimeraString decodes the raw (quote-delimited) text of a string
// token into literal-text and variable-reference fragments. Recognized
// escapes are \" \\ \/ \b \f \n \r \t \( \) and \uXXXX. An unescaped '('
// opens an interpolation point; its content must be a dotted identifier
// path terminated by an unescaped ')'.
func decodeChimeraString(raw string, start lexer.Position) ([]StringFragment, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return nil, &ParseError{Pos: start, Msg: "malformed string literal"}
	}

	body := raw[1 : len(raw)-1]
	pos := advancePos(start, "\"")

	var frags []StringFragment

	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			frags = append(frags, StringFragment{Literal: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(body) {
		ch := body[i]

		switch {
		case ch == '\\' && i+1 < len(body):
			decoded, width, err := decodeEscape(body[i:], pos)
			if err != nil {
				return nil, err
			}

			lit.WriteString(decoded)
			pos = advancePos(pos, body[i:i+width])
			i += width

		case ch == '(':
			varStart := pos
			end := strings.IndexByte(body[i:], ')')

			if end < 0 {
				return nil, &ParseError{Pos: varStart, Msg: "unterminated variable interpolation"}
			}

			inner := body[i+1 : i+end]

			parts := strings.Split(inner, ".")
			for _, p := range parts {
				if !isValidIdentPart(p) {
					return nil, &ParseError{Pos: varStart, Msg: "invalid variable reference: (" + inner + ")"}
				}
			}

			flush()

			varEnd := advancePos(varStart, body[i:i+end+1])
			frags = append(frags, StringFragment{Var: &VariableRef{
				Pos:    varStart,
				EndPos: varEnd,
				Parts:  parts,
			}})

			pos = varEnd
			i += end + 1

		default:
			lit.WriteByte(ch)
			pos = advancePos(pos, string(ch))
			i++
		}
	}

	flush()

	return frags, nil
}

func isValidIdentPart(s string) bool {
	if s == "" {
		return false
	}

	allDigits := true

	for _, r := range s {
		if !isDigitRune(r) {
			allDigits = false

			break
		}
	}

	// A pure digit sequence is a list-index path component (e.g. the "0" in
	// "(my_list.0)"). It is accepted at any position, the first included.
	if allDigits {
		return true
	}

	for idx, r := range s {
		if idx == 0 && !(r == '_' || isLetterRune(r)) {
			return false
		}

		if idx > 0 && !(r == '_' || r == '-' || isLetterRune(r) || isDigitRune(r)) {
			return false
		}
	}

	return true
}

func isLetterRune(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isDigitRune(r rune) bool  { return r >= '0' && r <= '9' }

// decodeEscape decodes one escape sequence starting at s[0]=='\\', returning
// the decoded text, the number of raw bytes consumed, and any error.
func decodeEscape(s string, pos lexer.Position) (string, int, error) {
	if len(s) < 2 {
		return "", 0, &ParseError{Pos: pos, Msg: "dangling escape at end of string"}
	}

	switch s[1] {
	case '"':
		return "\"", 2, nil
	case '\\':
		return "\\", 2, nil
	case '/':
		return "/", 2, nil
	case '(':
		return "(", 2, nil
	case ')':
		return ")", 2, nil
	case 'b':
		return "\b", 2, nil
	case 'f':
		return "\f", 2, nil
	case 'n':
		return "\n", 2, nil
	case 'r':
		return "\r", 2, nil
	case 't':
		return "\t", 2, nil
	case 'u':
		if len(s) < 6 {
			return "", 0, &ParseError{Pos: pos, Msg: "incomplete \\u escape"}
		}

		code, err := strconv.ParseUint(s[2:6], 16, 32)
		if err != nil {
			return "", 0, &ParseError{Pos: pos, Msg: "invalid \\u escape: " + s[2:6]}
		}

		return string(rune(code)), 6, nil
	default:
		return "", 0, &ParseError{Pos: pos, Msg: "unknown escape sequence \\" + string(s[1])}
	}
}

// advancePos recomputes a lexer.Position after consuming text, tracking
// newlines the same way the lexer itself does.
func advancePos(pos lexer.Position, text string) lexer.Position {
	for _, r := range text {
		pos.Offset++

		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}

	return pos
}

// walkScript visits every literal node reachable from a Script.
func walkScript(s *Script, v *literalVisitor) {
	for _, c := range s.Cases {
		walkFunction(c, v)
	}
}

func walkFunction(f *Function, v *literalVisitor) {
	walkBlock(f.Block, v)
}

func walkBlock(b *Block, v *literalVisitor) {
	if b == nil {
		return
	}

	for _, item := range b.Items {
		switch {
		case item.Teardown != nil:
			for _, st := range item.Teardown.Statements {
				walkStatement(st, v)
			}
		case item.Nested != nil:
			walkFunction(item.Nested, v)
		case item.Stmt != nil:
			walkStatement(item.Stmt, v)
		}
	}
}

func walkStatement(s *Statement, v *literalVisitor) {
	switch {
	case s.Assign != nil:
		walkExpression(s.Assign.Value, v)
	case s.Assert != nil:
		walkValue(s.Assert.Lhs, v)
		walkValue(s.Assert.Rhs, v)

		if s.Assert.Message != nil {
			v.str(s.Assert.Message)
		}
	case s.Print != nil:
		walkValue(s.Print.Value, v)
	case s.Expr != nil:
		walkExpression(s.Expr, v)
	}
}

func walkExpression(e *Expression, v *literalVisitor) {
	if e == nil {
		return
	}

	switch {
	case e.Http != nil:
		walkHttpCall(e.Http, v)
	case e.Literal != nil:
		walkLiteral(e.Literal, v)
	case e.List != nil:
		walkListOp(e.List, v)
	case e.Format != nil:
		v.str(e.Format)
	}
}

func walkLiteral(l *Literal, v *literalVisitor) {
	switch {
	case l.Str != nil:
		v.str(l.Str)
	case l.Number != nil:
		v.num(l.Number)
	case l.Boolean != nil:
		v.boolean(l.Boolean)
	}
}

func walkHttpCall(h *HttpCall, v *literalVisitor) {
	for _, q := range h.Query {
		walkValue(q.Value, v)
	}

	for _, b := range h.Body {
		walkValue(b.Value, v)
	}

	for _, hd := range h.Headers {
		walkValue(hd.Value, v)
	}

	for _, o := range h.Options {
		walkValue(o.Value, v)
	}
}

func walkListOp(l *ListOp, v *literalVisitor) {
	switch {
	case l.New != nil:
		for _, item := range l.New.Items {
			walkValue(item, v)
		}
	case l.Cmd != nil && l.Cmd.Arg != nil:
		walkValue(l.Cmd.Arg, v)
	}
}

func walkValue(val *Value, v *literalVisitor) {
	if val == nil {
		return
	}

	switch {
	case val.Str != nil:
		v.str(val.Str)
	case val.Number != nil:
		v.num(val.Number)
	case val.Boolean != nil:
		v.boolean(val.Boolean)
	}
}

package chimera

import (
	"strconv"
	"strings"
)

// Format renders a Script back into canonical ChimeraScript source. It is
// the inverse of Parse: Parse(Format(ast)) reproduces ast up to source
// spans, which is exercised by the round-trip property tests.
func Format(s *Script) string {
	var b strings.Builder

	f := &formatter{b: &b}

	for i, c := range s.Cases {
		if i > 0 {
			f.blankLine()
		}

		f.formatFunction(c)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

type formatter struct {
	b      *strings.Builder
	indent int
}

func (f *formatter) write(s string) { f.b.WriteString(s) }

func (f *formatter) writeLine(s string) {
	f.writeIndent()
	f.write(s)
	f.write("\n")
}

func (f *formatter) writeIndent() {
	for range f.indent {
		f.write("\t")
	}
}

func (f *formatter) blankLine() { f.write("\n") }

func (f *formatter) formatFunction(fn *Function) {
	if len(fn.Decorators) > 0 {
		parts := make([]string, len(fn.Decorators))
		for i, d := range fn.Decorators {
			if d.Value != nil {
				parts[i] = d.Key + "=" + *d.Value
			} else {
				parts[i] = d.Key
			}
		}

		f.writeLine("[" + strings.Join(parts, ", ") + "]")
	}

	f.writeLine("case " + fn.Name + "() {")
	f.indent++

	for i, item := range fn.Block.Items {
		if i > 0 {
			f.blankLine()
		}

		f.formatBlockItem(item)
	}

	f.indent--
	f.writeLine("}")
}

func (f *formatter) formatBlockItem(item *BlockItem) {
	switch {
	case item.Teardown != nil:
		f.writeLine("TEARDOWN {")
		f.indent++

		for _, st := range item.Teardown.Statements {
			f.formatStatement(st)
		}

		f.indent--
		f.writeLine("}")

	case item.Nested != nil:
		f.formatFunction(item.Nested)

	case item.Stmt != nil:
		f.formatStatement(item.Stmt)
	}
}

func (f *formatter) formatStatement(s *Statement) {
	switch {
	case s.Assign != nil:
		f.writeLine("var " + s.Assign.Name + " = " + f.formatExpression(s.Assign.Value) + ";")
	case s.Assert != nil:
		f.formatAssert(s.Assert)
	case s.Print != nil:
		f.writeLine("PRINT " + f.formatValue(s.Print.Value) + ";")
	case s.Expr != nil:
		f.writeLine(f.formatExpression(s.Expr) + ";")
	}
}

func (f *formatter) formatAssert(a *Assert) {
	var b strings.Builder

	b.WriteString("ASSERT ")

	if a.Negated {
		b.WriteString("NOT ")
	}

	b.WriteString(a.Op)
	b.WriteString(" ")
	b.WriteString(f.formatValue(a.Lhs))
	b.WriteString(" ")
	b.WriteString(f.formatValue(a.Rhs))

	if a.Message != nil {
		b.WriteString(" ")
		b.WriteString(formatStringLit(a.Message))
	}

	b.WriteString(";")
	f.writeLine(b.String())
}

func (f *formatter) formatExpression(e *Expression) string {
	switch {
	case e.Http != nil:
		return f.formatHttpCall(e.Http)
	case e.Literal != nil:
		return "LITERAL " + f.formatLiteral(e.Literal)
	case e.List != nil:
		return "LIST " + f.formatListOp(e.List)
	case e.Format != nil:
		return "FORMAT_STR " + formatStringLit(e.Format)
	default:
		return ""
	}
}

func (f *formatter) formatLiteral(l *Literal) string {
	switch {
	case l.Null:
		return "null"
	case l.Number != nil:
		return l.Number.String()
	case l.Boolean != nil:
		return strconv.FormatBool(l.Boolean.Value)
	case l.Str != nil:
		return formatStringLit(l.Str)
	default:
		return "null"
	}
}

func (f *formatter) formatValue(v *Value) string {
	switch {
	case v.Null:
		return "null"
	case v.Number != nil:
		return v.Number.String()
	case v.Boolean != nil:
		return strconv.FormatBool(v.Boolean.Value)
	case v.Str != nil:
		return formatStringLit(v.Str)
	case v.Var != nil:
		return v.Var.String()
	default:
		return "null"
	}
}

func (f *formatter) formatHttpCall(h *HttpCall) string {
	var b strings.Builder

	b.WriteString(h.Verb)
	b.WriteString(" ")
	b.WriteString(f.formatPath(h.Path))

	if len(h.Query) > 0 {
		b.WriteString(" ?")

		for i, q := range h.Query {
			if i > 0 {
				b.WriteString(" &")
			}

			b.WriteString(q.Name + "=" + f.formatValue(q.Value))
		}
	}

	for _, bodyField := range h.Body {
		b.WriteString(" " + bodyField.Name + "=" + f.formatValue(bodyField.Value))
	}

	for _, hd := range h.Headers {
		b.WriteString(" " + hd.Name + ":" + f.formatValue(hd.Value))
	}

	for _, opt := range h.Options {
		b.WriteString(" " + opt.Name + "=>" + f.formatValue(opt.Value))
	}

	return b.String()
}

func (f *formatter) formatPath(p *HttpPath) string {
	var b strings.Builder

	for _, group := range p.Segments {
		b.WriteString("/")

		for _, part := range group.Parts {
			if part.Var != nil {
				b.WriteString(part.Var.String())
			} else {
				b.WriteString(part.Ident)
			}
		}
	}

	return b.String()
}

func (f *formatter) formatListOp(l *ListOp) string {
	switch {
	case l.New != nil:
		items := make([]string, len(l.New.Items))
		for i, item := range l.New.Items {
			items[i] = f.formatValue(item)
		}

		return "NEW [" + strings.Join(items, ", ") + "]"

	case l.Cmd != nil:
		out := l.Cmd.Op + " " + l.Cmd.Var.String()
		if l.Cmd.Arg != nil {
			out += " " + f.formatValue(l.Cmd.Arg)
		}

		return out

	default:
		return ""
	}
}

// formatStringLit re-quotes a decoded StringLit, escaping the same
// characters the lexer requires to be escaped and re-inserting variable
// interpolation syntax for Var fragments.
func formatStringLit(s *StringLit) string {
	var b strings.Builder

	b.WriteByte('"')

	for _, frag := range s.Fragments {
		if frag.Var != nil {
			b.WriteString(frag.Var.String())

			continue
		}

		for _, r := range frag.Literal {
			switch r {
			case '"':
				b.WriteString(`\"`)
			case '\\':
				b.WriteString(`\\`)
			case '(':
				b.WriteString(`\(`)
			case ')':
				b.WriteString(`\)`)
			case '\n':
				b.WriteString(`\n`)
			case '\t':
				b.WriteString(`\t`)
			case '\r':
				b.WriteString(`\r`)
			default:
				b.WriteRune(r)
			}
		}
	}

	b.WriteByte('"')

	return b.String()
}

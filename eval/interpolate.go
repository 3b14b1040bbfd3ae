package eval

import (
	"strings"

	chimera "github.com/chimerascript/chimera"
)

// evalStringLit evaluates a StringLit's fragments, substituting each
// variable reference's Display() form into the surrounding literal text. A
// fragment-free string still round-trips through this path so that plain
// literals and interpolated ones share one evaluation rule.
func (e *Evaluator) evalStringLit(s *chimera.StringLit) (chimera.Val, error) {
	if s.IsPlainLiteral() {
		return chimera.StrVal(s.PlainText()), nil
	}

	var b strings.Builder

	for _, frag := range s.Fragments {
		if frag.Var == nil {
			b.WriteString(frag.Literal)

			continue
		}

		val, err := e.Store.Resolve(frag.Var.Parts)
		if err != nil {
			return chimera.Val{}, wrapVariableError(err, frag.Var)
		}

		b.WriteString(val.Display())
	}

	return chimera.StrVal(b.String()), nil
}

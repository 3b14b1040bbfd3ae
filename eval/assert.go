package eval

import (
	"fmt"

	chimera "github.com/chimerascript/chimera"
)

// assertOp evaluates one AssertOp over two already-evaluated operands,
// returning whether the (un-negated) condition holds.
type assertOp func(lhs, rhs chimera.Val) (bool, error)

var assertOps = map[string]assertOp{
	"EQUALS":   equalsOp,
	"GTE":      cmpOp(func(c int) bool { return c >= 0 }),
	"GT":       cmpOp(func(c int) bool { return c > 0 }),
	"LTE":      cmpOp(func(c int) bool { return c <= 0 }),
	"LT":       cmpOp(func(c int) bool { return c < 0 }),
	"STATUS":   statusOp,
	"LENGTH":   lengthOp,
	"CONTAINS": containsOp,
}

func equalsOp(lhs, rhs chimera.Val) (bool, error) {
	return lhs.Equal(rhs), nil
}

func cmpOp(pred func(int) bool) assertOp {
	return func(lhs, rhs chimera.Val) (bool, error) {
		c, err := lhs.Compare(rhs)
		if err != nil {
			return false, err
		}

		return pred(c), nil
	}
}

func statusOp(lhs, rhs chimera.Val) (bool, error) {
	if lhs.Kind() != chimera.KindHttpResponse {
		return false, fmt.Errorf("%w: STATUS requires an http_response operand, got %s", chimera.ErrTypeMismatch, lhs.Kind())
	}

	status, err := lhs.Field("status_code")
	if err != nil {
		return false, err
	}

	return status.Equal(rhs), nil
}

func lengthOp(lhs, rhs chimera.Val) (bool, error) {
	n, err := lhs.Length()
	if err != nil {
		return false, err
	}

	return chimera.IntVal(n).Equal(rhs), nil
}

func containsOp(lhs, rhs chimera.Val) (bool, error) {
	return lhs.Contains(rhs)
}

// evalAssert evaluates an Assert statement, returning an
// *AssertionFailedError if its condition does not hold.
func (e *Evaluator) evalAssert(a *chimera.Assert) error {
	lhs, err := e.EvalValue(a.Lhs)
	if err != nil {
		return err
	}

	rhs, err := e.EvalValue(a.Rhs)
	if err != nil {
		return err
	}

	op, ok := assertOps[a.Op]
	if !ok {
		return &TypeError{Span: a.Span(), Msg: "unknown assert operator " + a.Op}
	}

	result, err := op(lhs, rhs)
	if err != nil {
		return &TypeError{Span: a.Span(), Msg: err.Error()}
	}

	if a.Negated {
		result = !result
	}

	if result {
		return nil
	}

	message := defaultAssertMessage(a, lhs, rhs)

	if a.Message != nil {
		custom, err := e.evalStringLit(a.Message)
		if err == nil {
			message = custom.Str()
		}
	}

	return &AssertionFailedError{Span: a.Span(), Message: message}
}

func defaultAssertMessage(a *chimera.Assert, lhs, rhs chimera.Val) string {
	verb := a.Op
	if a.Negated {
		verb = "NOT " + verb
	}

	return fmt.Sprintf("expected %s %s %s", lhs.Display(), verb, rhs.Display())
}

package eval

import (
	"context"
	"fmt"
	"io"

	chimera "github.com/chimerascript/chimera"
)

// Evaluator executes statements against a shared Store and dispatches
// HttpCall expressions through a Client. One Evaluator is reused across an
// entire case tree; nested cases share its Store, taking a Snapshot before
// descending and a Restore on return (see runner.Runner).
type Evaluator struct {
	Store   *chimera.Store
	Client  chimera.Client
	BaseURL string
	Out     io.Writer
}

// New constructs an Evaluator. Out defaults to io.Discard if nil.
func New(store *chimera.Store, client chimera.Client, baseURL string, out io.Writer) *Evaluator {
	if out == nil {
		out = io.Discard
	}

	return &Evaluator{Store: store, Client: client, BaseURL: baseURL, Out: out}
}

// EvalStatement executes one Statement: an assignment, assertion, print, or
// bare expression evaluated for effect.
func (e *Evaluator) EvalStatement(ctx context.Context, stmt *chimera.Statement) error {
	switch {
	case stmt.Assign != nil:
		val, err := e.EvalExpression(ctx, stmt.Assign.Value)
		if err != nil {
			return err
		}

		e.Store.Set(stmt.Assign.Name, val)

		return nil

	case stmt.Assert != nil:
		return e.evalAssert(stmt.Assert)

	case stmt.Print != nil:
		val, err := e.EvalValue(stmt.Print.Value)
		if err != nil {
			return err
		}

		fmt.Fprintln(e.Out, val.Display())

		return nil

	case stmt.Expr != nil:
		_, err := e.EvalExpression(ctx, stmt.Expr)

		return err

	default:
		return nil
	}
}

// EvalExpression evaluates an Expression to a runtime Val.
func (e *Evaluator) EvalExpression(ctx context.Context, expr *chimera.Expression) (chimera.Val, error) {
	switch {
	case expr.Http != nil:
		return e.evalHttpCall(ctx, expr.Http)
	case expr.Literal != nil:
		return e.evalLiteral(expr.Literal)
	case expr.List != nil:
		return e.evalListOp(expr.List)
	case expr.Format != nil:
		return e.evalStringLit(expr.Format)
	default:
		return chimera.Val{}, fmt.Errorf("eval: expression has no populated variant at %s", expr.Span().Start)
	}
}

// EvalValue evaluates a Value: a scalar literal or a variable reference.
func (e *Evaluator) EvalValue(v *chimera.Value) (chimera.Val, error) {
	switch {
	case v.Null:
		return chimera.NullVal(), nil
	case v.Number != nil:
		return numberVal(v.Number), nil
	case v.Boolean != nil:
		return chimera.BoolVal(v.Boolean.Value), nil
	case v.Str != nil:
		return e.evalStringLit(v.Str)
	case v.Var != nil:
		val, err := e.Store.Resolve(v.Var.Parts)
		if err != nil {
			return chimera.Val{}, wrapVariableError(err, v.Var)
		}

		return val, nil
	default:
		return chimera.Val{}, fmt.Errorf("eval: value has no populated variant at %s", v.Span().Start)
	}
}

func (e *Evaluator) evalLiteral(l *chimera.Literal) (chimera.Val, error) {
	switch {
	case l.Null:
		return chimera.NullVal(), nil
	case l.Number != nil:
		return numberVal(l.Number), nil
	case l.Boolean != nil:
		return chimera.BoolVal(l.Boolean.Value), nil
	case l.Str != nil:
		return e.evalStringLit(l.Str)
	default:
		return chimera.Val{}, fmt.Errorf("eval: literal has no populated variant at %s", l.Span().Start)
	}
}

func numberVal(n *chimera.NumberLit) chimera.Val {
	if n.IsFloat {
		return chimera.FloatVal(n.Float)
	}

	return chimera.IntVal(n.Int)
}

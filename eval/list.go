package eval

import (
	chimera "github.com/chimerascript/chimera"
)

// evalListOp evaluates a list literal (NEW [...]) or a command against an
// existing list variable (LENGTH, APPEND, REMOVE, POP).
func (e *Evaluator) evalListOp(l *chimera.ListOp) (chimera.Val, error) {
	switch {
	case l.New != nil:
		return e.evalNewList(l.New)
	case l.Cmd != nil:
		return e.evalListCmd(l.Cmd)
	default:
		return chimera.Val{}, &TypeError{Span: l.Span(), Msg: "list operation has no populated variant"}
	}
}

func (e *Evaluator) evalNewList(n *chimera.NewList) (chimera.Val, error) {
	items := make([]chimera.Val, 0, len(n.Items))

	for _, item := range n.Items {
		val, err := e.EvalValue(item)
		if err != nil {
			return chimera.Val{}, err
		}

		items = append(items, val)
	}

	return chimera.ListVal(items), nil
}

// evalListCmd resolves the target variable (which must be a simple,
// undotted name naming a list) and applies the command. APPEND/REMOVE/POP
// write the mutated list back to the Store under the same name.
func (e *Evaluator) evalListCmd(c *chimera.ListCmd) (chimera.Val, error) {
	if len(c.Var.Parts) != 1 {
		return chimera.Val{}, &TypeError{Span: c.Var.Span(), Msg: "list commands require a plain variable name, not a field path"}
	}

	name := c.Var.Parts[0]

	current, ok := e.Store.Get(name)
	if !ok {
		return chimera.Val{}, &UndefinedVariableError{Span: c.Var.Span(), Name: name}
	}

	if current.Kind() != chimera.KindList {
		return chimera.Val{}, &TypeError{Span: c.Var.Span(), Msg: "variable " + name + " is not a list"}
	}

	items := current.List()

	switch c.Op {
	case "LENGTH":
		return chimera.IntVal(int64(len(items))), nil

	case "APPEND":
		if c.Arg == nil {
			return chimera.Val{}, &TypeError{Span: c.Span(), Msg: "APPEND requires a value"}
		}

		val, err := e.EvalValue(c.Arg)
		if err != nil {
			return chimera.Val{}, err
		}

		updated := append(items, val)
		e.Store.Set(name, chimera.ListVal(updated))

		return chimera.ListVal(updated), nil

	case "REMOVE":
		idx, err := e.listIndex(c, items)
		if err != nil {
			return chimera.Val{}, err
		}

		removed := items[idx]
		updated := append(append([]chimera.Val{}, items[:idx]...), items[idx+1:]...)
		e.Store.Set(name, chimera.ListVal(updated))

		return removed, nil

	case "POP":
		if len(items) == 0 {
			return chimera.Val{}, &IndexOutOfBoundsError{Span: c.Span(), Index: 0, Length: 0}
		}

		last := items[len(items)-1]
		updated := items[:len(items)-1]
		e.Store.Set(name, chimera.ListVal(updated))

		return last, nil

	default:
		return chimera.Val{}, &TypeError{Span: c.Span(), Msg: "unknown list command " + c.Op}
	}
}

// listIndex evaluates c.Arg as an integer index into items, bounds-checked.
func (e *Evaluator) listIndex(c *chimera.ListCmd, items []chimera.Val) (int64, error) {
	if c.Arg == nil {
		return 0, &TypeError{Span: c.Span(), Msg: "REMOVE requires an index"}
	}

	idxVal, err := e.EvalValue(c.Arg)
	if err != nil {
		return 0, err
	}

	if idxVal.Kind() != chimera.KindInt {
		return 0, &InvalidIndexKindError{Span: c.Arg.Span(), Kind: idxVal.Kind()}
	}

	idx := idxVal.Int()
	if idx < 0 || idx >= int64(len(items)) {
		return 0, &IndexOutOfBoundsError{Span: c.Arg.Span(), Index: idx, Length: int64(len(items))}
	}

	return idx, nil
}

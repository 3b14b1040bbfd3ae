package eval_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chimera "github.com/chimerascript/chimera"
)

func runScript(t *testing.T, src string, e interface {
	EvalStatement(context.Context, *chimera.Statement) error
}) {
	t.Helper()

	script, err := chimera.ParseString("case c() {\n" + src + "\n}")
	require.NoError(t, err)

	for _, st := range script.Cases[0].Block.Statements() {
		require.NoError(t, e.EvalStatement(context.Background(), st), "EvalStatement(%q)", src)
	}
}

func TestList_NewAndLength(t *testing.T) {
	t.Parallel()

	e := newEvaluator()
	runScript(t, `
		var xs = LIST NEW [1, 2, 3];
		var n = LIST LENGTH (xs);
	`, e)

	n, _ := e.Store.Get("n")
	assert.Equal(t, int64(3), n.Int())
}

// TestList_AppendIncreasesLengthByOne checks that appending always grows
// the list by exactly one, and the new last element is the appended value.
func TestList_AppendIncreasesLengthByOne(t *testing.T) {
	t.Parallel()

	e := newEvaluator()
	runScript(t, `
		var xs = LIST NEW [1, 2];
		var appended = LIST APPEND (xs) 99;
	`, e)

	xs, _ := e.Store.Get("xs")
	items := xs.List()

	require.Len(t, items, 3)
	assert.Equal(t, int64(99), items[2].Int())

	appended, _ := e.Store.Get("appended")
	assert.Equal(t, int64(99), appended.List()[2].Int(), "APPEND's return value should also reflect the new list")
}

func TestList_PopThenAppendRoundTrips(t *testing.T) {
	t.Parallel()

	e := newEvaluator()
	runScript(t, `
		var xs = LIST NEW [1, 2, 3];
		var popped = LIST POP (xs);
		var restored = LIST APPEND (xs) (popped);
	`, e)

	original := []int64{1, 2, 3}

	restored, _ := e.Store.Get("restored")
	items := restored.List()

	require.Len(t, items, len(original))

	for i, want := range original {
		assert.Equal(t, want, items[i].Int(), "restored[%d]", i)
	}
}

func TestList_RemoveShiftsAndReturnsValue(t *testing.T) {
	t.Parallel()

	e := newEvaluator()
	runScript(t, `
		var xs = LIST NEW [10, 20, 30];
		var removed = LIST REMOVE (xs) 1;
	`, e)

	removed, _ := e.Store.Get("removed")
	assert.Equal(t, int64(20), removed.Int())

	xs, _ := e.Store.Get("xs")
	items := xs.List()

	if assert.Len(t, items, 2) {
		assert.Equal(t, int64(10), items[0].Int())
		assert.Equal(t, int64(30), items[1].Int())
	}
}

func TestList_PopEmptyIsOutOfBounds(t *testing.T) {
	t.Parallel()

	e := newEvaluator()

	script, err := chimera.ParseString(`case c() {
		var xs = LIST NEW [];
		var p = LIST POP (xs);
	}`)
	require.NoError(t, err)

	stmts := script.Cases[0].Block.Statements()
	require.NoError(t, e.EvalStatement(context.Background(), stmts[0]))

	err = e.EvalStatement(context.Background(), stmts[1])
	assert.Error(t, err, "expected an out-of-bounds error popping an empty list")
}

func TestList_DottedIndexAccess(t *testing.T) {
	t.Parallel()

	e := newEvaluator()
	runScript(t, `
		var xs = LIST NEW [1, 2, "hello world"];
		ASSERT EQUALS (xs.2) "hello world";
	`, e)
}

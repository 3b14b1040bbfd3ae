package chimera

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVal_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Val
		want bool
	}{
		{"int equals int", IntVal(3), IntVal(3), true},
		{"int equals float", IntVal(3), FloatVal(3.0), true},
		{"float equals int, different value", FloatVal(3.5), IntVal(3), false},
		{"null equals null", NullVal(), NullVal(), true},
		{"null not equal bool", NullVal(), BoolVal(false), false},
		{"bool equals bool", BoolVal(true), BoolVal(true), true},
		{"str equals str", StrVal("x"), StrVal("x"), true},
		{"str not equal different str", StrVal("x"), StrVal("y"), false},
		{
			"list equals list",
			ListVal([]Val{IntVal(1), StrVal("a")}),
			ListVal([]Val{IntVal(1), StrVal("a")}),
			true,
		},
		{
			"list not equal different length",
			ListVal([]Val{IntVal(1)}),
			ListVal([]Val{IntVal(1), IntVal(2)}),
			false,
		},
		{
			"object equals object regardless of insertion order",
			ObjectVal(map[string]Val{"a": IntVal(1), "b": StrVal("x")}),
			ObjectVal(map[string]Val{"b": StrVal("x"), "a": IntVal(1)}),
			true,
		},
		{"NaN not equal to itself", FloatVal(math.NaN()), FloatVal(math.NaN()), false},
		{"NaN not equal to any number", FloatVal(math.NaN()), IntVal(1), false},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.a.Equal(tt.b), "%v.Equal(%v)", tt.a, tt.b)
		})
	}
}

func TestVal_Compare(t *testing.T) {
	t.Parallel()

	lt, err := IntVal(1).Compare(IntVal(2))
	require.NoError(t, err)
	assert.Negative(t, lt, "Compare(1, 2)")

	eq, err := IntVal(2).Compare(FloatVal(2.0))
	require.NoError(t, err)
	assert.Zero(t, eq, "Compare(2, 2.0)")

	gt, err := FloatVal(3.5).Compare(IntVal(2))
	require.NoError(t, err)
	assert.Positive(t, gt, "Compare(3.5, 2)")

	_, err = StrVal("a").Compare(IntVal(1))
	assert.ErrorIs(t, err, ErrNotComparable, "Compare(str, int)")

	_, err = FloatVal(math.NaN()).Compare(IntVal(1))
	assert.ErrorIs(t, err, ErrNotComparable, "Compare(NaN, 1)")
}

func TestVal_Field_Object(t *testing.T) {
	t.Parallel()

	obj := ObjectVal(map[string]Val{"id": IntVal(42)})

	got, err := obj.Field("id")
	require.NoError(t, err)
	assert.True(t, got.Equal(IntVal(42)), "Field(id) = %v, want 42", got)

	_, err = obj.Field("missing")
	assert.ErrorIs(t, err, ErrFieldNotFound, "Field(missing)")
}

func TestVal_Field_HttpResponse(t *testing.T) {
	t.Parallel()

	resp := HttpResponseVal(&HttpResponse{
		StatusCode: 201,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       ObjectVal(map[string]Val{"id": IntVal(7)}),
	})

	status, err := resp.Field("status_code")
	require.NoError(t, err)
	assert.True(t, status.Equal(IntVal(201)), "Field(status_code) = %v, want 201", status)

	body, err := resp.Field("body")
	require.NoError(t, err)

	id, err := body.Field("id")
	require.NoError(t, err)
	assert.True(t, id.Equal(IntVal(7)), "body.Field(id) = %v, want 7", id)

	headers, err := resp.Field("headers")
	require.NoError(t, err)

	ct, err := headers.Field("content-type")
	require.NoError(t, err)
	assert.True(t, ct.Equal(StrVal("application/json")), "headers.Field(content-type) = %v", ct)

	// Identifiers other than the pseudo-fields descend into the body.
	id, err = resp.Field("id")
	require.NoError(t, err)
	assert.True(t, id.Equal(IntVal(7)), "Field(id) should read body.id, got %v", id)

	_, err = resp.Field("bogus")
	assert.ErrorIs(t, err, ErrFieldNotFound, "Field(bogus)")
}

// TestVal_Field_List covers the list-dotted-index path used by
// (my_list.2)-style VariableRef resolution.
func TestVal_Field_List(t *testing.T) {
	t.Parallel()

	list := ListVal([]Val{IntVal(1), IntVal(2), StrVal("hello world")})

	got, err := list.Field("2")
	require.NoError(t, err)
	assert.True(t, got.Equal(StrVal("hello world")), "Field(2) = %v, want %q", got, "hello world")

	_, err = list.Field("99")
	assert.ErrorIs(t, err, ErrIndexOutOfBounds, "Field(99)")

	_, err = list.Field("notanumber")
	assert.ErrorIs(t, err, ErrInvalidIndexKind, "Field(notanumber)")
}

func TestVal_Index(t *testing.T) {
	t.Parallel()

	list := ListVal([]Val{IntVal(10), IntVal(20)})

	v, err := list.Index(1)
	require.NoError(t, err)
	assert.True(t, v.Equal(IntVal(20)), "Index(1) = %v, want 20", v)

	_, err = list.Index(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfBounds, "Index(-1)")

	_, err = StrVal("x").Index(0)
	assert.ErrorIs(t, err, ErrNotIndexable, "Index on string")
}

func TestVal_Length(t *testing.T) {
	t.Parallel()

	n, err := ListVal([]Val{IntVal(1), IntVal(2), IntVal(3)}).Length()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n, "Length(list)")

	n, err = StrVal("héllo").Length()
	require.NoError(t, err)
	assert.Equal(t, int64(5), n, "Length(str)")

	_, err = IntVal(1).Length()
	assert.ErrorIs(t, err, ErrNoLength, "Length(int)")
}

func TestVal_Contains(t *testing.T) {
	t.Parallel()

	ok, err := ListVal([]Val{IntVal(1), StrVal("x")}).Contains(StrVal("x"))
	require.NoError(t, err)
	assert.True(t, ok, "list Contains(x)")

	ok, err = ListVal([]Val{IntVal(1)}).Contains(IntVal(2))
	require.NoError(t, err)
	assert.False(t, ok, "list Contains(2)")

	obj := ObjectVal(map[string]Val{"id": IntVal(1)})

	ok, err = obj.Contains(StrVal("id"))
	require.NoError(t, err)
	assert.True(t, ok, "object Contains(id)")

	ok, err = obj.Contains(StrVal("name"))
	require.NoError(t, err)
	assert.False(t, ok, "object Contains(name)")

	_, err = obj.Contains(IntVal(1))
	assert.ErrorIs(t, err, ErrTypeMismatch, "object Contains with non-string needle")

	resp := HttpResponseVal(&HttpResponse{StatusCode: 200, Body: obj})

	ok, err = resp.Contains(StrVal("id"))
	require.NoError(t, err)
	assert.True(t, ok, "response Contains searches its body keys")

	_, err = StrVal("hello").Contains(StrVal("he"))
	assert.ErrorIs(t, err, ErrNotContainable, "Contains on str")

	_, err = IntVal(1).Contains(IntVal(1))
	assert.ErrorIs(t, err, ErrNotContainable, "Contains on int")
}

func TestVal_Display(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v    Val
		want string
	}{
		{NullVal(), "null"},
		{BoolVal(true), "true"},
		{IntVal(-5), "-5"},
		{FloatVal(1.5), "1.5"},
		{StrVal("hi"), "hi"},
		{ListVal([]Val{IntVal(1), StrVal("a")}), "[1, a]"},
		{ObjectVal(map[string]Val{"b": IntVal(2), "a": IntVal(1)}), "{a: 1, b: 2}"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.Display())
	}
}

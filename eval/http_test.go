package eval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chimera "github.com/chimerascript/chimera"
	"github.com/chimerascript/chimera/eval"
	"github.com/chimerascript/chimera/httpclient"
)

func TestHttpCall_PathAndQueryResolution(t *testing.T) {
	t.Parallel()

	fake := httpclient.NewFakeClient().WithResponse("GET", "/users/42", &chimera.HttpResponse{
		StatusCode: 200,
		Body:       chimera.ObjectVal(map[string]chimera.Val{"name": chimera.StrVal("ada")}),
	})

	e := eval.New(chimera.NewStore(), fake, "http://example.test", nil)
	e.Store.Set("id", chimera.IntVal(42))

	script, err := chimera.ParseString(`case c() {
		var res = GET /users/(id) ?limit=10 &active=true;
	}`)
	require.NoError(t, err)

	require.NoError(t, e.EvalStatement(context.Background(), script.Cases[0].Block.Statements()[0]))
	require.Len(t, fake.Requests, 1)

	req := fake.Requests[0]
	assert.Equal(t, "/users/42", req.Path)

	if assert.Len(t, req.Query, 2) {
		assert.Equal(t, "limit", req.Query[0].Name)
		assert.Equal(t, "active", req.Query[1].Name)
	}

	res, _ := e.Store.Get("res")
	require.Equal(t, chimera.KindHttpResponse, res.Kind())

	status, err := res.Field("status_code")
	require.NoError(t, err)
	assert.Equal(t, int64(200), status.Int())
}

func TestHttpCall_PathEscaping(t *testing.T) {
	t.Parallel()

	fake := httpclient.NewFakeClient().WithResponse("GET", "/search/hello%20world", &chimera.HttpResponse{StatusCode: 200, Body: chimera.NullVal()})

	e := eval.New(chimera.NewStore(), fake, "http://example.test", nil)
	e.Store.Set("term", chimera.StrVal("hello world"))

	script, err := chimera.ParseString(`case c() {
		var res = GET /search/(term);
	}`)
	require.NoError(t, err)

	require.NoError(t, e.EvalStatement(context.Background(), script.Cases[0].Block.Statements()[0]))
	require.Len(t, fake.Requests, 1)

	assert.Equal(t, "/search/hello%20world", fake.Requests[0].Path)
}

func TestHttpCall_TransportErrorWrapped(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	fake := httpclient.NewFakeClient().WithError("GET", "/widgets", boom)

	e := eval.New(chimera.NewStore(), fake, "http://example.test", nil)

	script, err := chimera.ParseString(`case c() {
		var res = GET /widgets;
	}`)
	require.NoError(t, err)

	err = e.EvalStatement(context.Background(), script.Cases[0].Block.Statements()[0])

	var transportErr *eval.TransportError

	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, transportErr, boom, "TransportError should unwrap to the underlying transport failure")
}

func TestHttpCall_BodyAndHeaders(t *testing.T) {
	t.Parallel()

	fake := httpclient.NewFakeClient().WithResponse("POST", "/widgets", &chimera.HttpResponse{StatusCode: 201, Body: chimera.NullVal()})

	e := eval.New(chimera.NewStore(), fake, "http://example.test", nil)

	script, err := chimera.ParseString(`case c() {
		var res = POST /widgets name="gadget" x-trace: "abc123" timeout=>30;
	}`)
	require.NoError(t, err)

	require.NoError(t, e.EvalStatement(context.Background(), script.Cases[0].Block.Statements()[0]))

	req := fake.Requests[0]

	if assert.Len(t, req.Body, 1) {
		assert.Equal(t, "name", req.Body[0].Name)
		assert.Equal(t, "gadget", req.Body[0].Value.Str())
	}

	if assert.Len(t, req.Headers, 1) {
		assert.Equal(t, "x-trace", req.Headers[0].Name)
	}

	if assert.Len(t, req.Options, 1) {
		assert.Equal(t, "timeout", req.Options[0].Name)
	}
}

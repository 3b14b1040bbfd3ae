package httpclient

import (
	"context"
	"errors"

	chimera "github.com/chimerascript/chimera"
)

// ErrNoFakeResponse is returned when a FakeClient has no canned response
// registered for the requested method and path.
var ErrNoFakeResponse = errors.New("httpclient: no fake response registered")

// FakeClient is a recording, scriptable chimera.Client for evaluator and
// runner tests that must not reach a real network.
type FakeClient struct {
	responses map[string]*chimera.HttpResponse
	errors    map[string]error
	Requests  []chimera.Request
}

var _ chimera.Client = (*FakeClient)(nil)

// NewFakeClient returns an empty FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		responses: make(map[string]*chimera.HttpResponse),
		errors:    make(map[string]error),
	}
}

// WithResponse registers the response to return for method+path.
func (f *FakeClient) WithResponse(method, path string, resp *chimera.HttpResponse) *FakeClient {
	f.responses[fakeKey(method, path)] = resp

	return f
}

// WithError registers a transport error to return for method+path.
func (f *FakeClient) WithError(method, path string, err error) *FakeClient {
	f.errors[fakeKey(method, path)] = err

	return f
}

// Do records the request and returns the canned response or error
// registered for its method and path.
func (f *FakeClient) Do(_ context.Context, req chimera.Request) (*chimera.HttpResponse, error) {
	f.Requests = append(f.Requests, req)

	key := fakeKey(req.Method, req.Path)

	if err, ok := f.errors[key]; ok {
		return nil, err
	}

	if resp, ok := f.responses[key]; ok {
		return resp, nil
	}

	return nil, ErrNoFakeResponse
}

func fakeKey(method, path string) string {
	return method + " " + path
}

func init() {
	chimera.RegisterClient("fake", func(chimera.ClientConfig) (chimera.Client, error) {
		return NewFakeClient(), nil
	})
}

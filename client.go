package chimera

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownClient is returned by NewClient for an unregistered client name.
var ErrUnknownClient = errors.New("unknown client")

// KV is one ordered name/value pair, used to preserve the source order of
// HTTP query parameters, body fields, headers, and options across the
// request boundary (a plain map would not).
type KV struct {
	Name  string
	Value Val
}

// Request is everything an HttpCall resolves to once every Value operand
// has been evaluated against the current Store.
type Request struct {
	Method  string
	BaseURL string
	Path    string
	Query   []KV
	Body    []KV
	Headers []KV
	Options []KV
}

// Client dispatches a resolved Request and returns the resulting
// HttpResponse, or a transport-level error (connection refused, timeout,
// DNS failure) distinct from an application-level non-2xx response, which
// is still a successful HttpResponse as far as the evaluator is concerned.
type Client interface {
	Do(ctx context.Context, req Request) (*HttpResponse, error)
}

// ClientFactory builds a Client from configuration. Registered factories
// let a runner switch transports (a live net/http client in production, a
// recording fake in tests) by name alone.
type ClientFactory func(cfg ClientConfig) (Client, error)

// ClientConfig holds the settings needed to construct a Client.
type ClientConfig struct {
	BaseURL string            `yaml:"base_url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Options map[string]any    `yaml:"options,omitempty"`
}

var clients = make(map[string]ClientFactory)

// RegisterClient registers a client factory under a name so that config
// files can select a transport by string (e.g. "http", "fake").
func RegisterClient(name string, factory ClientFactory) {
	clients[name] = factory
}

// NewClient constructs a registered Client by name.
//
//nolint:ireturn
func NewClient(name string, cfg ClientConfig) (Client, error) {
	factory, ok := clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClient, name)
	}

	return factory(cfg)
}

// RegisteredClients returns the names of every registered client factory.
func RegisteredClients() []string {
	names := make([]string, 0, len(clients))
	for name := range clients {
		names = append(names, name)
	}

	return names
}

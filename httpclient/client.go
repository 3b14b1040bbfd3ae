// Package httpclient is the concrete chimera.Client backing production
// runs: it dispatches a chimera.Request over net/http and decodes the wire
// response into the value model.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	chimera "github.com/chimerascript/chimera"
)

const defaultTimeout = 30 * time.Second

// Client dispatches requests over net/http.
type Client struct {
	http    *http.Client
	headers map[string]string
}

var _ chimera.Client = (*Client)(nil)

// New builds a Client from cfg. Options.timeout_ms, if set, overrides the
// default 30s request timeout.
func New(cfg chimera.ClientConfig) (chimera.Client, error) {
	timeout := defaultTimeout

	if ms, ok := cfg.Options["timeout_ms"]; ok {
		switch n := ms.(type) {
		case float64:
			timeout = time.Duration(n) * time.Millisecond
		case int:
			timeout = time.Duration(n) * time.Millisecond
		case int64:
			timeout = time.Duration(n) * time.Millisecond
		}
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		headers: cfg.Headers,
	}, nil
}

func init() {
	chimera.RegisterClient("http", New)
}

// Do builds and sends an *http.Request from req, then decodes the response
// into an HttpResponse: an empty body becomes Null, JSON bodies are decoded
// into the value model, anything else is kept as a Str.
func (c *Client) Do(ctx context.Context, req chimera.Request) (*chimera.HttpResponse, error) {
	target, err := buildURL(req)
	if err != nil {
		return nil, fmt.Errorf("building request url: %w", err)
	}

	var bodyReader io.Reader

	if len(req.Body) > 0 {
		payload := kvToJSONObject(req.Body)

		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	for name, value := range c.headers {
		httpReq.Header.Set(name, value)
	}

	if bodyReader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for _, kv := range req.Headers {
		httpReq.Header.Set(kv.Name, kv.Value.Display())
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("dispatching request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		headers[name] = resp.Header.Get(name)
	}

	return &chimera.HttpResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       decodeBody(resp.Header.Get("Content-Type"), raw),
		RawBody:    raw,
	}, nil
}

func buildURL(req chimera.Request) (string, error) {
	base := strings.TrimRight(req.BaseURL, "/")
	path := req.Path

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	full := base + path

	if len(req.Query) == 0 {
		return full, nil
	}

	values := url.Values{}
	for _, kv := range req.Query {
		values.Add(kv.Name, kv.Value.Display())
	}

	return full + "?" + values.Encode(), nil
}

func kvToJSONObject(kvs []chimera.KV) map[string]any {
	out := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		out[kv.Name] = valToJSON(kv.Value)
	}

	return out
}

func valToJSON(v chimera.Val) any {
	switch v.Kind() {
	case chimera.KindNull:
		return nil
	case chimera.KindBool:
		return v.Bool()
	case chimera.KindInt:
		return v.Int()
	case chimera.KindFloat:
		return v.Float()
	case chimera.KindStr:
		return v.Str()
	case chimera.KindList:
		items := v.List()
		out := make([]any, len(items))

		for i, item := range items {
			out[i] = valToJSON(item)
		}

		return out
	case chimera.KindObject, chimera.KindHttpResponse:
		return v.Display()
	default:
		return v.Display()
	}
}

// decodeBody interprets a wire response body into the value model: JSON
// bodies decode structurally, an empty body becomes Null, everything else
// becomes a Str.
func decodeBody(contentType string, raw []byte) chimera.Val {
	if len(raw) == 0 {
		return chimera.NullVal()
	}

	if strings.Contains(contentType, "json") || json.Valid(raw) {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()

		var decoded any

		if err := dec.Decode(&decoded); err == nil {
			return jsonToVal(decoded)
		}
	}

	return chimera.StrVal(string(raw))
}

func jsonToVal(v any) chimera.Val {
	switch x := v.(type) {
	case nil:
		return chimera.NullVal()
	case bool:
		return chimera.BoolVal(x)
	case string:
		return chimera.StrVal(x)
	case json.Number:
		return numberFromJSON(x)
	case float64:
		return numberFromJSON(json.Number(strconv.FormatFloat(x, 'f', -1, 64)))
	case []any:
		items := make([]chimera.Val, len(x))
		for i, item := range x {
			items[i] = jsonToVal(item)
		}

		return chimera.ListVal(items)
	case map[string]any:
		obj := make(map[string]chimera.Val, len(x))
		for k, item := range x {
			obj[k] = jsonToVal(item)
		}

		return chimera.ObjectVal(obj)
	default:
		return chimera.NullVal()
	}
}

// numberFromJSON classifies a JSON number as Int when it has no fractional
// component, Float otherwise, per the documented wire-decoding contract.
func numberFromJSON(n json.Number) chimera.Val {
	if i, err := n.Int64(); err == nil {
		return chimera.IntVal(i)
	}

	f, _ := n.Float64()

	return chimera.FloatVal(f)
}

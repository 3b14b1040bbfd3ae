package eval

import (
	"context"
	"net/url"
	"strings"

	chimera "github.com/chimerascript/chimera"
)

// evalHttpCall resolves every operand of an HttpCall against the current
// Store, dispatches the resulting Request through the Evaluator's Client,
// and returns the response as an http_response Val.
func (e *Evaluator) evalHttpCall(ctx context.Context, h *chimera.HttpCall) (chimera.Val, error) {
	path, err := e.evalPath(h.Path)
	if err != nil {
		return chimera.Val{}, err
	}

	query, err := e.evalParams(h.Query)
	if err != nil {
		return chimera.Val{}, err
	}

	body, err := e.evalParams(h.Body)
	if err != nil {
		return chimera.Val{}, err
	}

	headers, err := e.evalHeaders(h.Headers)
	if err != nil {
		return chimera.Val{}, err
	}

	options, err := e.evalOptions(h.Options)
	if err != nil {
		return chimera.Val{}, err
	}

	req := chimera.Request{
		Method:  h.Verb,
		BaseURL: e.BaseURL,
		Path:    path,
		Query:   query,
		Body:    body,
		Headers: headers,
		Options: options,
	}

	resp, err := e.Client.Do(ctx, req)
	if err != nil {
		return chimera.Val{}, &TransportError{Span: h.Span(), Err: err}
	}

	return chimera.HttpResponseVal(resp), nil
}

// evalPath resolves a path's segment groups, URL-escaping interpolated
// parts but leaving literal identifier text untouched so that path
// templates like /users/(id) read naturally in source.
func (e *Evaluator) evalPath(p *chimera.HttpPath) (string, error) {
	var b strings.Builder

	for _, group := range p.Segments {
		b.WriteByte('/')

		for _, part := range group.Parts {
			switch {
			case part.Var != nil:
				val, err := e.Store.Resolve(part.Var.Parts)
				if err != nil {
					return "", wrapVariableError(err, part.Var)
				}

				b.WriteString(url.PathEscape(val.Display()))

			default:
				b.WriteString(part.Ident)
			}
		}
	}

	return b.String(), nil
}

func (e *Evaluator) evalParams(params []*chimera.HttpParam) ([]chimera.KV, error) {
	kvs := make([]chimera.KV, 0, len(params))

	for _, p := range params {
		val, err := e.EvalValue(p.Value)
		if err != nil {
			return nil, err
		}

		kvs = append(kvs, chimera.KV{Name: p.Name, Value: val})
	}

	return kvs, nil
}

func (e *Evaluator) evalHeaders(headers []*chimera.HttpHeader) ([]chimera.KV, error) {
	kvs := make([]chimera.KV, 0, len(headers))

	for _, h := range headers {
		val, err := e.EvalValue(h.Value)
		if err != nil {
			return nil, err
		}

		kvs = append(kvs, chimera.KV{Name: h.Name, Value: val})
	}

	return kvs, nil
}

func (e *Evaluator) evalOptions(options []*chimera.HttpOption) ([]chimera.KV, error) {
	kvs := make([]chimera.KV, 0, len(options))

	for _, o := range options {
		val, err := e.EvalValue(o.Value)
		if err != nil {
			return nil, err
		}

		kvs = append(kvs, chimera.KV{Name: o.Name, Value: val})
	}

	return kvs, nil
}

package chimera

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the dynamic type carried by a Val.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList
	KindObject
	KindHttpResponse
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindHttpResponse:
		return "http_response"
	default:
		return "unknown"
	}
}

// Sentinel errors returned by Val's accessor methods. The eval package
// wraps these with source-span context to build the typed error taxonomy.
var (
	ErrNotFieldAccessible = errors.New("value does not support field access")
	ErrFieldNotFound      = errors.New("field not found")
	ErrNotIndexable       = errors.New("value does not support indexing")
	ErrIndexOutOfBounds   = errors.New("index out of bounds")
	ErrInvalidIndexKind   = errors.New("index must be an integer")
	ErrNotComparable      = errors.New("values are not ordinally comparable")
	ErrNoLength           = errors.New("value has no length")
	ErrNotContainable     = errors.New("value does not support contains")
)

// HttpResponse is the runtime value produced by dispatching an HttpCall. It
// is itself addressable through VariableRef field access, e.g.
// (response.status_code), (response.body.id), (response.headers.Content-Type).
type HttpResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       Val
	RawBody    []byte
}

// Val is ChimeraScript's tagged-union runtime value. The zero Val is Null.
type Val struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Val
	obj  map[string]Val
	http *HttpResponse
}

func NullVal() Val             { return Val{kind: KindNull} }
func BoolVal(b bool) Val       { return Val{kind: KindBool, b: b} }
func IntVal(i int64) Val       { return Val{kind: KindInt, i: i} }
func FloatVal(f float64) Val   { return Val{kind: KindFloat, f: f} }
func StrVal(s string) Val      { return Val{kind: KindStr, s: s} }
func ListVal(items []Val) Val  { return Val{kind: KindList, list: items} }
func ObjectVal(m map[string]Val) Val {
	return Val{kind: KindObject, obj: m}
}

func HttpResponseVal(r *HttpResponse) Val {
	return Val{kind: KindHttpResponse, http: r}
}

func (v Val) Kind() Kind    { return v.kind }
func (v Val) IsNull() bool  { return v.kind == KindNull }
func (v Val) Bool() bool    { return v.b }
func (v Val) Int() int64    { return v.i }
func (v Val) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}

	return v.f
}

func (v Val) Str() string { return v.s }

// List returns a copy of the underlying slice; mutating list ops
// (APPEND/REMOVE) must use the Store rather than mutating a returned Val in
// place, since Vals are meant to be treated as immutable.
func (v Val) List() []Val {
	out := make([]Val, len(v.list))
	copy(out, v.list)

	return out
}

func (v Val) Http() *HttpResponse { return v.http }

// Field resolves one dotted path component on an Object, HttpResponse, or
// List value. HttpResponse exposes the pseudo-fields status_code, body, and
// headers; any other identifier descends into its body, so (res.id) reads
// the same value as (res.body.id). A List accepts only an integer-literal
// component, resolved via Index (so a negative or too-large one fails
// IndexOutOfBounds); anything else fails InvalidIndexKind.
func (v Val) Field(name string) (Val, error) {
	switch v.kind {
	case KindList:
		idx, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			return Val{}, &InvalidIndexKindDetail{Got: name}
		}

		return v.Index(idx)

	case KindObject:
		val, ok := v.obj[name]
		if !ok {
			return Val{}, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
		}

		return val, nil

	case KindHttpResponse:
		switch name {
		case "status_code":
			return IntVal(int64(v.http.StatusCode)), nil
		case "body":
			return v.http.Body, nil
		case "headers":
			m := make(map[string]Val, len(v.http.Headers))
			for k, hv := range v.http.Headers {
				m[k] = StrVal(hv)
			}

			return ObjectVal(m), nil
		default:
			return v.http.Body.Field(name)
		}

	default:
		return Val{}, fmt.Errorf("%w: %s", ErrNotFieldAccessible, v.kind)
	}
}

// Index resolves a single numeric list index. Negative indices are
// rejected; ChimeraScript has no negative-indexing convention.
func (v Val) Index(idx int64) (Val, error) {
	if v.kind != KindList {
		return Val{}, fmt.Errorf("%w: %s", ErrNotIndexable, v.kind)
	}

	if idx < 0 || idx >= int64(len(v.list)) {
		return Val{}, &IndexOutOfBoundsDetail{Index: idx, Length: int64(len(v.list))}
	}

	return v.list[idx], nil
}

// IndexOutOfBoundsDetail carries the operands of a failed list index so
// that callers building a typed error (eval.wrapVariableError) don't need
// to re-parse an error string. It unwraps to ErrIndexOutOfBounds.
type IndexOutOfBoundsDetail struct {
	Index  int64
	Length int64
}

func (d *IndexOutOfBoundsDetail) Error() string {
	return fmt.Sprintf("%s: index %d, length %d", ErrIndexOutOfBounds, d.Index, d.Length)
}

func (d *IndexOutOfBoundsDetail) Unwrap() error { return ErrIndexOutOfBounds }

// InvalidIndexKindDetail carries the offending path component of a failed
// list field access. It unwraps to ErrInvalidIndexKind.
type InvalidIndexKindDetail struct {
	Got string
}

func (d *InvalidIndexKindDetail) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidIndexKind, d.Got)
}

func (d *InvalidIndexKindDetail) Unwrap() error { return ErrInvalidIndexKind }

// Length returns the length of a Str or List value.
func (v Val) Length() (int64, error) {
	switch v.kind {
	case KindStr:
		return int64(len([]rune(v.s))), nil
	case KindList:
		return int64(len(v.list)), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrNoLength, v.kind)
	}
}

// Contains reports membership: element equality search for List, key
// membership for Object. An HttpResponse haystack searches the keys of its
// body.
func (v Val) Contains(needle Val) (bool, error) {
	switch v.kind {
	case KindList:
		for _, item := range v.list {
			if item.Equal(needle) {
				return true, nil
			}
		}

		return false, nil

	case KindObject:
		if needle.kind != KindStr {
			return false, fmt.Errorf("%w: CONTAINS on an object requires a string key", ErrTypeMismatch)
		}

		_, ok := v.obj[needle.s]

		return ok, nil

	case KindHttpResponse:
		return v.http.Body.Contains(needle)

	default:
		return false, fmt.Errorf("%w: %s", ErrNotContainable, v.kind)
	}
}

// ErrTypeMismatch is returned by operations whose operand kinds are
// individually valid but incompatible with each other (e.g. CONTAINS
// between an object haystack and a non-string needle).
var ErrTypeMismatch = errors.New("operand type mismatch")

// Equal implements ChimeraScript's equality: same kind family required,
// except int/float which compare by numeric value, and NaN which is never
// equal to anything including itself.
func (v Val) Equal(other Val) bool {
	if v.kind == KindFloat && math.IsNaN(v.f) {
		return false
	}

	if other.kind == KindFloat && math.IsNaN(other.f) {
		return false
	}

	if isNumeric(v.kind) && isNumeric(other.kind) {
		return v.Float() == other.Float()
	}

	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindStr:
		return v.s == other.s
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}

		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}

		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}

		for k, val := range v.obj {
			ov, ok := other.obj[k]
			if !ok || !val.Equal(ov) {
				return false
			}
		}

		return true
	case KindHttpResponse:
		return v.http == other.http
	default:
		return false
	}
}

// Compare orders two numeric values. NaN compares unordered with
// everything, including another NaN: Compare returns an error rather than
// a sign.
func (v Val) Compare(other Val) (int, error) {
	if !isNumeric(v.kind) || !isNumeric(other.kind) {
		return 0, fmt.Errorf("%w: %s vs %s", ErrNotComparable, v.kind, other.kind)
	}

	a, b := v.Float(), other.Float()
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0, fmt.Errorf("%w: NaN is unordered", ErrNotComparable)
	}

	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

func isNumeric(k Kind) bool { return k == KindInt || k == KindFloat }

// Display formats a Val the way PRINT and interpolation render it.
func (v Val) Display() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		if math.IsNaN(v.f) {
			return "NaN"
		}

		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindStr:
		return v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.Display()
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.obj[k].Display()
		}

		return "{" + strings.Join(parts, ", ") + "}"
	case KindHttpResponse:
		return fmt.Sprintf("HttpResponse{status: %d}", v.http.StatusCode)
	default:
		return "<invalid>"
	}
}

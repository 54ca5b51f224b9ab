package mapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"jobpost-etl/internal/model"
)

var (
	ErrMissing   = errors.New("missing")
	ErrWrongType = errors.New("wrong type")
)

// FieldError says which path made a section fall back and why.
type FieldError struct {
	Path string
	Err  error
	Got  string // Go type of the offending value, for wrong-type errors
}

func (e *FieldError) Error() string {
	if e.Got != "" {
		return fmt.Sprintf("%s: %v (got %s)", e.Path, e.Err, e.Got)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// fieldReader reads every field a section needs and remembers the first
// failure. Callers check err once, before building any output.
type fieldReader struct {
	doc model.RawDocument
	err error
}

func newReader(doc model.RawDocument) *fieldReader {
	return &fieldReader{doc: doc}
}

func (r *fieldReader) fail(path []string, err error, got any) {
	if r.err != nil {
		return
	}
	fe := &FieldError{Path: strings.Join(path, "."), Err: err}
	if got != nil {
		fe.Got = fmt.Sprintf("%T", got)
	}
	r.err = fe
}

// lookup walks path through nested objects. A JSON null counts as missing.
func (r *fieldReader) lookup(path []string) (any, bool) {
	var cur any = map[string]any(r.doc)
	for i, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			r.fail(path[:i], ErrWrongType, cur)
			return nil, false
		}
		v, ok := obj[key]
		if !ok || v == nil {
			r.fail(path[:i+1], ErrMissing, nil)
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// text accepts any JSON scalar and returns it as text. Numbers keep their
// source digits, so postal codes and numeric industry codes read as written.
func (r *fieldReader) text(path ...string) string {
	v, ok := r.lookup(path)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		r.fail(path, ErrWrongType, v)
		return ""
	}
}

// markup requires a JSON string; it feeds the text cleaner.
func (r *fieldReader) markup(path ...string) string {
	v, ok := r.lookup(path)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(path, ErrWrongType, v)
		return ""
	}
	return s
}

// number accepts a JSON number or a string holding one.
func (r *fieldReader) number(path ...string) float64 {
	v, ok := r.lookup(path)
	if !ok {
		return 0
	}
	var (
		f   float64
		err error
	)
	switch x := v.(type) {
	case json.Number:
		f, err = x.Float64()
	case float64:
		f = x
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		r.fail(path, ErrWrongType, v)
		return 0
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(path, ErrWrongType, v)
		return 0
	}
	return f
}

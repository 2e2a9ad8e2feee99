package normalize

import (
	"encoding/json"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
)

// lookup resolves a jsonpath expression against a decoded payload.
// jsonpath is never clear about whether it returns a list of one answer
// or a single answer, so single-element lists are unwrapped. That makes
// lookup (and strAt/numAt/mapAt on top of it) wrong for fields whose
// legitimate value is a one-element array; callers that want a list
// must use listAt, which never unwraps.
func lookup(doc any, path string) (any, bool) {
	v, err := jsonpath.Get(path, doc)
	if err != nil || v == nil {
		return nil, false
	}
	if l, ok := v.([]any); ok && len(l) == 1 {
		return l[0], true
	}
	return v, true
}

func strAt(doc any, path, def string) string {
	v, ok := lookup(doc, path)
	if !ok {
		return def
	}
	if s := coerceString(v); s != "" {
		return s
	}
	return def
}

func numAt(doc any, path string, def float64) float64 {
	v, ok := lookup(doc, path)
	if !ok {
		return def
	}
	return coerceFloat(v, def)
}

func listAt(doc any, path string) []any {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil
	}
	return l
}

func mapAt(doc any, path string) map[string]any {
	v, ok := lookup(doc, path)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

// coerceFloat accepts the numeric encodings seen in the remote payloads:
// JSON numbers, quoted numbers, and json.Number.
func coerceFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

// coerceInt parses an integer with a nil result on failure, for fields
// like credit scores that are legitimately absent.
func coerceInt(v any) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		return &n
	case json.Number:
		if i64, err := n.Int64(); err == nil {
			i := int(i64)
			return &i
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return &i
		}
	}
	return nil
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

package table

import (
	"fmt"
	"math"

	"github.com/wdm0006/missingness/pkg/schema"
)

// FromDecoded converts generically decoded rows (JSON, parquet) into a
// Table, normalizing scalars to the schema's canonical Go types: integers to
// int64, floats to float64, call/locus strings parsed into their scalar
// types.
func FromDecoded(tree *schema.Tree, raw []map[string]any) (*Table, error) {
	if tree == nil || tree.Root == nil {
		return nil, &EngineError{Op: "decode", Err: fmt.Errorf("nil schema tree")}
	}
	rows := make([]Row, 0, len(raw))
	for i, m := range raw {
		row, err := normalizeStruct(tree.Root.Type, m, "")
		if err != nil {
			return nil, &EngineError{Op: "decode", Err: fmt.Errorf("row %d: %w", i, err)}
		}
		rows = append(rows, row)
	}
	return New(tree, rows)
}

func normalizeStruct(st *schema.Type, m map[string]any, path string) (map[string]any, error) {
	out := make(map[string]any, len(st.Fields))
	for name := range m {
		if !hasField(st, name) {
			return nil, fmt.Errorf("field %s%q not in schema", path, name)
		}
	}
	for _, sf := range st.Fields {
		v, ok := m[sf.Name]
		if !ok || v == nil {
			out[sf.Name] = nil
			continue
		}
		nv, err := normalizeValue(sf.Type, v, path+sf.Name)
		if err != nil {
			return nil, err
		}
		out[sf.Name] = nv
	}
	return out, nil
}

func normalizeValue(t *schema.Type, v any, path string) (any, error) {
	switch t.Kind {
	case schema.KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case schema.KindInt32, schema.KindInt64:
		switch x := v.(type) {
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		case int64:
			return x, nil
		case float64:
			if math.Trunc(x) == x {
				return int64(x), nil
			}
		}
	case schema.KindFloat32, schema.KindFloat64:
		switch x := v.(type) {
		case float32:
			return float64(x), nil
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case int32:
			return float64(x), nil
		case int64:
			return float64(x), nil
		}
	case schema.KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case schema.KindCall:
		switch x := v.(type) {
		case Call:
			return x, nil
		case string:
			return ParseCall(x)
		}
	case schema.KindLocus:
		switch x := v.(type) {
		case Locus:
			return x, nil
		case string:
			return ParseLocus(x)
		}
	case schema.KindMap:
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
	case schema.KindStruct:
		if m, ok := v.(map[string]any); ok {
			return normalizeStruct(t, m, path+".")
		}
	case schema.KindArray, schema.KindSet:
		arr, ok := toSlice(v)
		if !ok {
			break
		}
		out := make([]any, len(arr))
		for i, el := range arr {
			if el == nil {
				continue
			}
			nv, err := normalizeValue(t.Elem, el, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	}
	return nil, typeErr(path, t.Kind.String(), v)
}

func toSlice(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []map[string]any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out, true
	}
	return nil, false
}

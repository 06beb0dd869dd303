// Package table provides an in-memory, key-indexed table over a nested
// schema, and the aggregation seam a missingness report is built against.
// The real distributed engine lives behind the Dataset interface; Table is
// the in-process implementation used for tests, examples, and small data.
package table

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wdm0006/missingness/pkg/plan"
	"github.com/wdm0006/missingness/pkg/schema"
)

// Dataset is a handle to a key-indexed tabular dataset: an enumerable
// schema, declared key fields, and a single aggregation entry point that
// evaluates one combined plan and returns one structured result.
type Dataset interface {
	Schema() *schema.Tree
	Count() int64
	Aggregate(ctx context.Context, p *plan.Plan) (*plan.Result, error)
}

// EngineError wraps a failure of the aggregation engine. It is fatal to the
// current report build and never retried here.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string { return fmt.Sprintf("engine: %s: %v", e.Op, e.Err) }
func (e *EngineError) Unwrap() error { return e.Err }

// Call is an opaque genotype-call scalar.
type Call struct {
	Alleles [2]int
	Phased  bool
}

func (c Call) String() string {
	sep := "/"
	if c.Phased {
		sep = "|"
	}
	return strconv.Itoa(c.Alleles[0]) + sep + strconv.Itoa(c.Alleles[1])
}

// ParseCall parses "a/b" (unphased) or "a|b" (phased).
func ParseCall(s string) (Call, error) {
	sep := "/"
	phased := false
	if strings.ContainsRune(s, '|') {
		sep = "|"
		phased = true
	}
	parts := strings.SplitN(s, sep, 2)
	if len(parts) != 2 {
		return Call{}, fmt.Errorf("call: cannot parse %q", s)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return Call{}, fmt.Errorf("call: cannot parse %q", s)
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return Call{}, fmt.Errorf("call: cannot parse %q", s)
	}
	return Call{Alleles: [2]int{a, b}, Phased: phased}, nil
}

// Locus is an opaque genomic-position scalar.
type Locus struct {
	Contig   string
	Position int64
}

func (l Locus) String() string { return l.Contig + ":" + strconv.FormatInt(l.Position, 10) }

// ParseLocus parses "contig:position".
func ParseLocus(s string) (Locus, error) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 {
		return Locus{}, fmt.Errorf("locus: cannot parse %q", s)
	}
	pos, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil {
		return Locus{}, fmt.Errorf("locus: cannot parse %q", s)
	}
	return Locus{Contig: s[:i], Position: pos}, nil
}

// Row is one row: field name to value, nil meaning null. Structs are nested
// Rows, arrays and sets are []any, maps are map[string]any. Integer fields
// hold int64, floating fields float64.
type Row = map[string]any

// Table is the in-memory Dataset.
type Table struct {
	tree *schema.Tree
	rows []Row

	aggregateCalls int
}

// New validates rows against the schema tree and returns a table over them.
func New(tree *schema.Tree, rows []Row) (*Table, error) {
	if tree == nil || tree.Root == nil {
		return nil, &EngineError{Op: "new", Err: fmt.Errorf("nil schema tree")}
	}
	for i, r := range rows {
		if err := validateStruct(tree.Root.Type, r); err != nil {
			return nil, &EngineError{Op: "new", Err: fmt.Errorf("row %d: %w", i, err)}
		}
	}
	return &Table{tree: tree, rows: rows}, nil
}

func (t *Table) Schema() *schema.Tree { return t.tree }
func (t *Table) Count() int64         { return int64(len(t.rows)) }

// AggregateCalls reports how many times Aggregate ran; a report build must
// issue exactly one call.
func (t *Table) AggregateCalls() int { return t.aggregateCalls }

// Key returns the row key of row i, with values in canonical string form.
func (t *Table) Key(i int) plan.RowKey {
	row := t.rows[i]
	key := make(plan.RowKey, 0, len(t.tree.Key))
	for _, name := range t.tree.Key {
		key = append(key, plan.KeyValue{Name: name, Value: FormatValue(row[name])})
	}
	return key
}

// Row returns row i. The returned map is the table's own storage; treat it
// as read-only.
func (t *Table) Row(i int) Row { return t.rows[i] }

// NullifyEmptyContainers replaces every empty-but-present array or set with
// null, the preprocessing the original analysis pipeline applied before
// measuring missingness.
func (t *Table) NullifyEmptyContainers() {
	for _, row := range t.rows {
		nullifyEmpty(t.tree.Root.Type, row)
	}
}

func nullifyEmpty(st *schema.Type, m map[string]any) {
	for _, sf := range st.Fields {
		v, ok := m[sf.Name]
		if !ok || v == nil {
			continue
		}
		switch sf.Type.Kind {
		case schema.KindStruct:
			if child, ok := v.(map[string]any); ok {
				nullifyEmpty(sf.Type, child)
			}
		case schema.KindArray, schema.KindSet:
			arr, ok := v.([]any)
			if !ok {
				continue
			}
			if len(arr) == 0 {
				m[sf.Name] = nil
				continue
			}
			if sf.Type.Elem.Kind == schema.KindStruct {
				for _, el := range arr {
					if child, ok := el.(map[string]any); ok && child != nil {
						nullifyEmpty(sf.Type.Elem, child)
					}
				}
			}
		}
	}
}

// FormatValue renders a scalar in its canonical textual form, the form row
// keys and the cache file use.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case Call:
		return x.String()
	case Locus:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func validateStruct(st *schema.Type, m map[string]any) error {
	for _, sf := range st.Fields {
		v, ok := m[sf.Name]
		if !ok || v == nil {
			continue
		}
		if err := validateValue(sf.Name, sf.Type, v); err != nil {
			return err
		}
	}
	for name := range m {
		if !hasField(st, name) {
			return fmt.Errorf("field %q not in schema", name)
		}
	}
	return nil
}

func hasField(st *schema.Type, name string) bool {
	for _, sf := range st.Fields {
		if sf.Name == name {
			return true
		}
	}
	return false
}

func validateValue(path string, t *schema.Type, v any) error {
	switch t.Kind {
	case schema.KindBool:
		if _, ok := v.(bool); !ok {
			return typeErr(path, "bool", v)
		}
	case schema.KindInt32, schema.KindInt64:
		if _, ok := v.(int64); !ok {
			return typeErr(path, "int64", v)
		}
	case schema.KindFloat32, schema.KindFloat64:
		if _, ok := v.(float64); !ok {
			return typeErr(path, "float64", v)
		}
	case schema.KindString:
		if _, ok := v.(string); !ok {
			return typeErr(path, "string", v)
		}
	case schema.KindCall:
		if _, ok := v.(Call); !ok {
			return typeErr(path, "call", v)
		}
	case schema.KindLocus:
		if _, ok := v.(Locus); !ok {
			return typeErr(path, "locus", v)
		}
	case schema.KindMap:
		if _, ok := v.(map[string]any); !ok {
			return typeErr(path, "map", v)
		}
	case schema.KindStruct:
		m, ok := v.(map[string]any)
		if !ok {
			return typeErr(path, "struct", v)
		}
		for _, sf := range t.Fields {
			cv, ok := m[sf.Name]
			if !ok || cv == nil {
				continue
			}
			if err := validateValue(path+"."+sf.Name, sf.Type, cv); err != nil {
				return err
			}
		}
	case schema.KindArray, schema.KindSet:
		arr, ok := v.([]any)
		if !ok {
			return typeErr(path, "array", v)
		}
		for i, el := range arr {
			if el == nil {
				continue
			}
			if err := validateValue(fmt.Sprintf("%s[%d]", path, i), t.Elem, el); err != nil {
				return err
			}
		}
	}
	return nil
}

func typeErr(path, want string, got any) error {
	return fmt.Errorf("field %s: expected %s, got %T", path, want, got)
}

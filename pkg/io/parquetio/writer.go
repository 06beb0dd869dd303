package parquetio

import (
	"os"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/wdm0006/missingness/pkg/schema"
	"github.com/wdm0006/missingness/pkg/table"
)

// WriteTable encodes every row of a table into a parquet file whose schema
// mirrors the table's. Call and locus values are written in their string
// forms, which ReadTable parses back. Null container elements have no
// repeated-field representation and fail the write.
func WriteTable(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := parquet.NewGenericWriter[map[string]any](f, parquetSchema(t.Schema()))
	for i := int64(0); i < t.Count(); i++ {
		row := encodeValue(t.Schema().Root.Type, map[string]any(t.Row(int(i)))).(map[string]any)
		if _, err := w.Write([]map[string]any{row}); err != nil {
			_ = w.Close()
			_ = f.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func parquetSchema(tree *schema.Tree) *parquet.Schema {
	return parquet.NewSchema("row", groupNode(tree.Root.Type))
}

func groupNode(t *schema.Type) parquet.Group {
	g := parquet.Group{}
	for _, sf := range t.Fields {
		g[sf.Name] = fieldNode(sf.Type)
	}
	return g
}

func fieldNode(t *schema.Type) parquet.Node {
	if t.Kind == schema.KindArray || t.Kind == schema.KindSet {
		// classic repeated encoding: element nodes are required, so null
		// elements cannot be represented and fail the write
		return parquet.Repeated(requiredNode(t.Elem))
	}
	return parquet.Optional(requiredNode(t))
}

func requiredNode(t *schema.Type) parquet.Node {
	switch t.Kind {
	case schema.KindBool:
		return parquet.Leaf(parquet.BooleanType)
	case schema.KindInt32:
		return parquet.Int(32)
	case schema.KindInt64:
		return parquet.Int(64)
	case schema.KindFloat32:
		return parquet.Leaf(parquet.FloatType)
	case schema.KindFloat64:
		return parquet.Leaf(parquet.DoubleType)
	case schema.KindStruct:
		return groupNode(t)
	case schema.KindMap:
		return parquet.Map(parquet.String(), fieldNode(t.Value))
	default:
		// string, call, locus
		return parquet.String()
	}
}

// encodeValue rewrites call and locus scalars to their string forms so the
// generic writer can serialize the row maps.
func encodeValue(t *schema.Type, v any) any {
	if v == nil {
		return nil
	}
	switch t.Kind {
	case schema.KindCall, schema.KindLocus:
		return table.FormatValue(v)
	case schema.KindInt32:
		// the table normalizes all integers to int64; the INT32 column
		// needs a concrete int32
		return int32(v.(int64))
	case schema.KindFloat32:
		// likewise float64 -> FLOAT column
		return float32(v.(float64))
	case schema.KindStruct:
		m := v.(map[string]any)
		out := make(map[string]any, len(m))
		for _, sf := range t.Fields {
			out[sf.Name] = encodeValue(sf.Type, m[sf.Name])
		}
		return out
	case schema.KindArray, schema.KindSet:
		arr := v.([]any)
		out := make([]any, len(arr))
		for i, el := range arr {
			out[i] = encodeValue(t.Elem, el)
		}
		return out
	case schema.KindMap:
		m := v.(map[string]any)
		out := make(map[string]any, len(m))
		for k, mv := range m {
			out[k] = encodeValue(t.Value, mv)
		}
		return out
	default:
		return v
	}
}

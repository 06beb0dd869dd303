package table

import (
	"github.com/wdm0006/missingness/pkg/schema"
)

// ExampleType returns the row type and key of the worked-example dataset:
// two keyed rows exercising primitives, opaque scalars, containers, nested
// structs, and doubly-nested arrays of structs.
func ExampleType() (*schema.Type, []string) {
	detailed := schema.StructOf(
		schema.F("long_field1", schema.Int32()),
		schema.F("long_field2", schema.String()),
	)
	innerStructs := schema.ArrayOf(schema.StructOf(
		schema.F("inner_n", schema.Int32()),
		schema.F("inner_o", schema.String()),
		schema.F("inner_s", schema.StructOf(
			schema.F("another_field", schema.String()),
		)),
	))
	row := schema.StructOf(
		schema.F("k1", schema.String()),
		schema.F("k2", schema.String()),
		schema.F("a", schema.Int32()),
		schema.F("b", schema.String()),
		schema.F("c", schema.Bool()),
		schema.F("d", schema.Int64()),
		schema.F("e", schema.Float32()),
		schema.F("f", schema.Float64()),
		schema.F("g", schema.Call()),
		schema.F("h", schema.Locus()),
		schema.F("i", schema.ArrayOf(schema.Int32())),
		schema.F("complex_dictionary", schema.MapOf(schema.String(), schema.Int32())),
		schema.F("k", schema.SetOf(schema.Int32())),
		schema.F("detailed_struct", detailed),
		schema.F("array_of_structs", schema.ArrayOf(schema.StructOf(
			schema.F("long_n", schema.Int32()),
			schema.F("long_o", schema.String()),
			schema.F("inner_array_of_structs", innerStructs),
		))),
		schema.F("nested_complex_struct", schema.StructOf(
			schema.F("q", schema.Int32()),
			schema.F("detailed_struct", detailed),
			schema.F("inner_struct", schema.StructOf(
				schema.F("long_s", schema.Int32()),
				schema.F("long_t", schema.String()),
			)),
		)),
		schema.F("optional_field", schema.Int32()),
		schema.F("deeply_nested_struct", schema.StructOf(
			schema.F("outer_field", schema.StructOf(
				schema.F("inner_field1", schema.Int32()),
				schema.F("inner_field2", schema.String()),
			)),
		)),
	)
	return row, []string{"k1", "k2"}
}

// Example builds the worked-example table. Empty containers are left as-is;
// callers wanting the original preprocessing use NullifyEmptyContainers.
func Example() (*Table, error) {
	row, key := ExampleType()
	tree, err := schema.Build(row, key)
	if err != nil {
		return nil, err
	}
	rows := []Row{
		{
			"k1": "key1", "k2": "key2",
			"a": int64(2), "b": "text", "c": true,
			"d": int64(1234567890123456789), "e": 2.71828, "f": 3.141592653589793,
			"g": Call{Alleles: [2]int{1, 0}},
			"h": Locus{Contig: "chr1", Position: 10000},
			"i": []any{int64(1), int64(2), int64(3)},
			"complex_dictionary": map[string]any{"key1": int64(5), "key2": int64(10)},
			"k":                  []any{int64(11), int64(12), int64(13)},
			"detailed_struct": map[string]any{
				"long_field1": int64(14), "long_field2": "text",
			},
			"array_of_structs": []any{
				map[string]any{
					"long_n": int64(15), "long_o": "text1",
					"inner_array_of_structs": []any{
						map[string]any{
							"inner_n": nil, "inner_o": "inner_text1",
							"inner_s": map[string]any{"another_field": "value1"},
						},
						map[string]any{
							"inner_n": int64(2), "inner_o": "inner_text2",
							"inner_s": map[string]any{"another_field": "value2"},
						},
					},
				},
				map[string]any{
					"long_n": int64(16), "long_o": "text2",
					"inner_array_of_structs": []any{},
				},
			},
			"nested_complex_struct": map[string]any{
				"q": int64(17),
				"detailed_struct": map[string]any{
					"long_field1": int64(14), "long_field2": "text",
				},
				"inner_struct": map[string]any{"long_s": int64(18), "long_t": "text3"},
			},
			"optional_field": int64(19),
			"deeply_nested_struct": map[string]any{
				"outer_field": map[string]any{"inner_field1": int64(20), "inner_field2": nil},
			},
		},
		{
			"k1": "key3", "k2": "key4",
			"a": int64(5), "b": "more_text", "c": false,
			"d": int64(98765432109876), "e": 3.14159, "f": 1.618033988749895,
			"g": Call{Alleles: [2]int{0, 1}},
			"h": Locus{Contig: "chr2", Position: 20000},
			"i": []any{int64(4), int64(5), int64(6)},
			"complex_dictionary": map[string]any{"key3": int64(15), "key4": nil},
			"k":                  []any{int64(14), int64(15), int64(16)},
			"detailed_struct": map[string]any{
				"long_field1": nil, "long_field2": "more_text",
			},
			"array_of_structs": []any{
				map[string]any{
					"long_n": int64(25), "long_o": "text4",
					"inner_array_of_structs": []any{
						map[string]any{
							"inner_n": int64(5), "inner_o": "inner_text5",
							"inner_s": map[string]any{"another_field": nil},
						},
						map[string]any{
							"inner_n": int64(6), "inner_o": "inner_text6",
							"inner_s": map[string]any{"another_field": "value6"},
						},
					},
				},
				map[string]any{
					"long_n": nil, "long_o": "text5",
					"inner_array_of_structs": []any{
						map[string]any{
							"inner_n": int64(7), "inner_o": "inner_text7",
							"inner_s": map[string]any{"another_field": "value7"},
						},
						map[string]any{
							"inner_n": int64(8), "inner_o": "inner_text8",
							"inner_s": map[string]any{"another_field": "value8"},
						},
					},
				},
			},
			"nested_complex_struct": map[string]any{
				"q": int64(27),
				"detailed_struct": map[string]any{
					"long_field1": nil, "long_field2": "more_text",
				},
				"inner_struct": map[string]any{"long_s": int64(28), "long_t": nil},
			},
			"optional_field":       nil,
			"deeply_nested_struct": nil,
		},
	}
	return New(tree, rows)
}

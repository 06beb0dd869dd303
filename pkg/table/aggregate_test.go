package table_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/missingness/pkg/plan"
	"github.com/wdm0006/missingness/pkg/table"
)

func exampleResult(t *testing.T) (*table.Table, *plan.Result) {
	t.Helper()
	tbl, err := table.Example()
	require.NoError(t, err)
	tbl.NullifyEmptyContainers()
	p, err := plan.Build(tbl.Schema())
	require.NoError(t, err)
	res, err := tbl.Aggregate(context.Background(), p)
	require.NoError(t, err)
	return tbl, res
}

var (
	keyRow1 = plan.RowKey{{Name: "k1", Value: "key1"}, {Name: "k2", Value: "key2"}}
	keyRow2 = plan.RowKey{{Name: "k1", Value: "key3"}, {Name: "k2", Value: "key4"}}
)

func TestAggregateCounts(t *testing.T) {
	_, res := exampleResult(t)

	expected := map[string]int64{
		"detailed_struct.long_field1":                       1,
		"nested_complex_struct.detailed_struct.long_field1": 1,
		"nested_complex_struct.inner_struct.long_t":         1,
		"optional_field":                                    1,
		"deeply_nested_struct":                              1,
		"deeply_nested_struct.outer_field.inner_field2":     1,
		"array_of_structs.inner_array_of_structs":           1,
		"array_of_structs.inner_array_of_structs.inner_n":   1,
		"array_of_structs.inner_array_of_structs.inner_s.another_field": 1,
		"array_of_structs.long_n":                                       1,
	}
	for path, want := range expected {
		assert.Equal(t, want, res.Counts[path], "counts for %s", path)
	}

	// fully populated fields stay at zero
	for _, path := range []string{
		"k1", "k2", "a", "g", "h", "i", "complex_dictionary", "k",
		"detailed_struct", "array_of_structs", "nested_complex_struct",
		"deeply_nested_struct.outer_field",
		"deeply_nested_struct.outer_field.inner_field1",
	} {
		assert.Zero(t, res.Counts[path], "counts for %s", path)
	}
}

func TestAggregateKeys(t *testing.T) {
	_, res := exampleResult(t)

	expected := map[string][]plan.RowKey{
		"detailed_struct.long_field1":                       {keyRow2},
		"nested_complex_struct.detailed_struct.long_field1": {keyRow2},
		"nested_complex_struct.inner_struct.long_t":         {keyRow2},
		"optional_field":                                    {keyRow2},
		"deeply_nested_struct":                              {keyRow2},
		"deeply_nested_struct.outer_field.inner_field2":     {keyRow1},
		"array_of_structs.inner_array_of_structs":           {keyRow1},
		"array_of_structs.inner_array_of_structs.inner_n":   {keyRow1},
		"array_of_structs.inner_array_of_structs.inner_s.another_field": {keyRow2},
	}
	for path, want := range expected {
		assert.Equal(t, want, res.Keys[path], "keys for %s", path)
	}
	assert.Empty(t, res.Keys["k1"])
}

func TestAggregateDenominators(t *testing.T) {
	_, res := exampleResult(t)

	// row-scope fields: every row is a context
	assert.Equal(t, int64(2), res.Denoms["optional_field"])
	assert.Equal(t, int64(2), res.Denoms["detailed_struct.long_field1"])

	// parent-missing rows drop out of the denominator
	assert.Equal(t, int64(1), res.Denoms["deeply_nested_struct.outer_field"])
	assert.Equal(t, int64(1), res.Denoms["deeply_nested_struct.outer_field.inner_field2"])

	// element-scope fields count element contexts: 2+2 outer elements, and
	// 2+0+2+2 inner ones (one inner container was nullified)
	assert.Equal(t, int64(4), res.Denoms["array_of_structs.long_n"])
	assert.Equal(t, int64(4), res.Denoms["array_of_structs.inner_array_of_structs"])
	assert.Equal(t, int64(6), res.Denoms["array_of_structs.inner_array_of_structs.inner_n"])
	assert.Equal(t, int64(6), res.Denoms["array_of_structs.inner_array_of_structs.inner_s.another_field"])
}

func TestParentMissingExcludesChild(t *testing.T) {
	_, res := exampleResult(t)

	// deeply_nested_struct is null in row 2: its subtree must not count
	// that row anywhere
	assert.Zero(t, res.Counts["deeply_nested_struct.outer_field"])
	assert.Zero(t, res.Counts["deeply_nested_struct.outer_field.inner_field1"])
	assert.Equal(t, int64(1), res.Counts["deeply_nested_struct.outer_field.inner_field2"])
	assert.Equal(t, []plan.RowKey{keyRow1}, res.Keys["deeply_nested_struct.outer_field.inner_field2"])
}

func TestAggregateNullElement(t *testing.T) {
	tbl, err := table.New(smallTree(t), []table.Row{
		{"k1": "a", "x": int64(1), "arr": []any{
			map[string]any{"n": int64(1)},
			nil,
		}},
		{"k1": "b", "x": int64(2), "arr": nil},
	})
	require.NoError(t, err)
	p, err := plan.Build(tbl.Schema())
	require.NoError(t, err)
	res, err := tbl.Aggregate(context.Background(), p)
	require.NoError(t, err)

	// a null element is one missing per child field and stays in the
	// denominator; a null container contributes no elements at all
	assert.Equal(t, int64(1), res.Counts["arr.n"])
	assert.Equal(t, int64(2), res.Denoms["arr.n"])
	assert.Equal(t, []plan.RowKey{{{Name: "k1", Value: "a"}}}, res.Keys["arr.n"])

	assert.Equal(t, int64(1), res.Counts["arr"])
	assert.Equal(t, int64(2), res.Denoms["arr"])
}

func TestAggregateSinglePass(t *testing.T) {
	tbl, _ := exampleResult(t)
	assert.Equal(t, 1, tbl.AggregateCalls())
}

func TestAggregateDeterministic(t *testing.T) {
	tbl, err := table.Example()
	require.NoError(t, err)
	tbl.NullifyEmptyContainers()
	p, err := plan.Build(tbl.Schema())
	require.NoError(t, err)

	first, err := tbl.Aggregate(context.Background(), p)
	require.NoError(t, err)
	second, err := tbl.Aggregate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAggregateZeroRows(t *testing.T) {
	tbl, err := table.New(smallTree(t), nil)
	require.NoError(t, err)
	p, err := plan.Build(tbl.Schema())
	require.NoError(t, err)
	res, err := tbl.Aggregate(context.Background(), p)
	require.NoError(t, err)
	for _, e := range p.Entries {
		assert.Zero(t, res.Counts[e.Path])
		assert.Zero(t, res.Denoms[e.Path])
		assert.Empty(t, res.Keys[e.Path])
	}
}

func TestAggregateCancelled(t *testing.T) {
	tbl, err := table.Example()
	require.NoError(t, err)
	p, err := plan.Build(tbl.Schema())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tbl.Aggregate(ctx, p)
	require.Error(t, err)
	var eerr *table.EngineError
	assert.ErrorAs(t, err, &eerr)
}

func TestAggregateNilPlan(t *testing.T) {
	tbl, err := table.Example()
	require.NoError(t, err)
	_, err = tbl.Aggregate(context.Background(), nil)
	require.Error(t, err)
}

package report_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/missingness/pkg/plan"
	"github.com/wdm0006/missingness/pkg/report"
	"github.com/wdm0006/missingness/pkg/schema"
	"github.com/wdm0006/missingness/pkg/table"
)

func exampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.Example()
	require.NoError(t, err)
	tbl.NullifyEmptyContainers()
	return tbl
}

func buildReport(t *testing.T, tbl *table.Table) *report.Report {
	t.Helper()
	rep, err := report.Build(context.Background(), tbl, report.Options{})
	require.NoError(t, err)
	return rep
}

func TestBuildRecordOrder(t *testing.T) {
	rep := buildReport(t, exampleTable(t))
	recs := rep.Records()
	assert.Len(t, recs, 37)

	var fields []string
	for _, r := range recs {
		fields = append(fields, r.Field)
	}
	// a struct's own row comes immediately before its nested fields
	assert.Equal(t, []string{
		"detailed_struct",
		"detailed_struct.long_field1",
		"detailed_struct.long_field2",
		"array_of_structs",
		"array_of_structs.long_n",
	}, fields[13:18])
	assert.Equal(t, "k1", fields[0])
}

func TestBuildWorkedExample(t *testing.T) {
	rep := buildReport(t, exampleTable(t))

	rec, ok := rep.Record("optional_field")
	require.True(t, ok)
	assert.Equal(t, int64(1), rec.Counts)
	assert.Equal(t, 50.0, rec.MissingPercent)
	assert.Equal(t, []plan.RowKey{
		{{Name: "k1", Value: "key3"}, {Name: "k2", Value: "key4"}},
	}, rec.MissingKeys)

	counts := rep.Counts()
	for _, path := range []string{
		"detailed_struct.long_field1",
		"nested_complex_struct.detailed_struct.long_field1",
		"nested_complex_struct.inner_struct.long_t",
		"deeply_nested_struct",
		"deeply_nested_struct.outer_field.inner_field2",
		"array_of_structs.inner_array_of_structs.inner_n",
		"array_of_structs.inner_array_of_structs.inner_s.another_field",
	} {
		assert.Equal(t, int64(1), counts[path], "counts for %s", path)
	}
}

func TestStructOwnRowVersusChild(t *testing.T) {
	rep := buildReport(t, exampleTable(t))

	// the struct itself is always present; only its sub-field is missing
	own, ok := rep.Record("detailed_struct")
	require.True(t, ok)
	assert.Zero(t, own.Counts)
	assert.Zero(t, own.MissingPercent)

	child, ok := rep.Record("detailed_struct.long_field1")
	require.True(t, ok)
	assert.Equal(t, int64(1), child.Counts)
	assert.Equal(t, 50.0, child.MissingPercent)
}

func TestPercentAgainstParentPresentOnly(t *testing.T) {
	rep := buildReport(t, exampleTable(t))

	// the parent struct is missing in one of two rows, so the child's
	// percentage is computed against a denominator of one
	rec, ok := rep.Record("deeply_nested_struct.outer_field.inner_field2")
	require.True(t, ok)
	assert.Equal(t, int64(1), rec.Counts)
	assert.Equal(t, 100.0, rec.MissingPercent)

	rec, ok = rep.Record("array_of_structs.inner_array_of_structs.inner_n")
	require.True(t, ok)
	assert.InDelta(t, 100.0/6.0, rec.MissingPercent, 1e-12)
}

func TestBuildSingleAggregation(t *testing.T) {
	tbl := exampleTable(t)
	buildReport(t, tbl)
	assert.Equal(t, 1, tbl.AggregateCalls())
}

func TestBuildIdempotent(t *testing.T) {
	a := buildReport(t, exampleTable(t))
	b := buildReport(t, exampleTable(t))
	assert.Equal(t, a.Records(), b.Records())
}

func TestBuildZeroRowDataset(t *testing.T) {
	row, key := table.ExampleType()
	tree, err := schema.Build(row, key)
	require.NoError(t, err)
	tbl, err := table.New(tree, nil)
	require.NoError(t, err)

	rep := buildReport(t, tbl)
	for _, rec := range rep.Records() {
		assert.Zero(t, rec.Counts, "counts for %s", rec.Field)
		assert.Zero(t, rec.MissingPercent, "percent for %s", rec.Field)
		assert.Empty(t, rec.MissingKeys)
	}
}

func TestBuildWithoutDatasetOrCache(t *testing.T) {
	_, err := report.Build(context.Background(), nil, report.Options{})
	require.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	rep := buildReport(t, exampleTable(t))
	var buf bytes.Buffer
	rep.WriteTable(&buf)
	out := buf.String()
	assert.Contains(t, out, "optional_field")
	assert.Contains(t, out, `{"k1":"key3","k2":"key4"}`)
}

func TestDataFrame(t *testing.T) {
	rep := buildReport(t, exampleTable(t))
	df := rep.DataFrame()
	require.NotNil(t, df)
	assert.Equal(t, rep.Len(), df.NRows())
}

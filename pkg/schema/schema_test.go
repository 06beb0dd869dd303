package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/missingness/pkg/schema"
)

func nestedRowType() *schema.Type {
	return schema.StructOf(
		schema.F("k1", schema.String()),
		schema.F("a", schema.Int32()),
		schema.F("tags", schema.ArrayOf(schema.String())),
		schema.F("meta", schema.MapOf(schema.String(), schema.Int32())),
		schema.F("outer", schema.StructOf(
			schema.F("inner", schema.StructOf(
				schema.F("leaf", schema.Float64()),
			)),
		)),
		schema.F("events", schema.ArrayOf(schema.StructOf(
			schema.F("n", schema.Int32()),
			schema.F("detail", schema.StructOf(
				schema.F("note", schema.String()),
			)),
		))),
	)
}

func TestBuildPaths(t *testing.T) {
	tree, err := schema.Build(nestedRowType(), []string{"k1"})
	require.NoError(t, err)

	var paths []string
	tree.Walk(func(f *schema.Field) { paths = append(paths, f.PathString()) })
	assert.Equal(t, []string{
		"k1",
		"a",
		"tags",
		"meta",
		"outer",
		"outer.inner",
		"outer.inner.leaf",
		"events",
		"events.n",
		"events.detail",
		"events.detail.note",
	}, paths)
}

func TestBuildParentLinks(t *testing.T) {
	tree, err := schema.Build(nestedRowType(), []string{"k1"})
	require.NoError(t, err)

	byPath := map[string]*schema.Field{}
	tree.Walk(func(f *schema.Field) { byPath[f.PathString()] = f })

	leaf := byPath["outer.inner.leaf"]
	require.NotNil(t, leaf)
	assert.Equal(t, "outer.inner", leaf.Parent.PathString())
	assert.Same(t, tree.Root, leaf.Parent.Parent.Parent)
	assert.False(t, leaf.InElement)

	// fields under a container-of-struct are element-scoped
	assert.True(t, byPath["events.n"].InElement)
	assert.True(t, byPath["events.detail.note"].InElement)
	assert.False(t, byPath["events"].InElement)
}

func TestBuildLeaves(t *testing.T) {
	tree, err := schema.Build(nestedRowType(), nil)
	require.NoError(t, err)
	byPath := map[string]*schema.Field{}
	tree.Walk(func(f *schema.Field) { byPath[f.PathString()] = f })

	// array of primitives and maps do not recurse
	assert.Empty(t, byPath["tags"].Children)
	assert.Empty(t, byPath["meta"].Children)
	// container of struct does
	assert.Len(t, byPath["events"].Children, 2)
	assert.True(t, byPath["events"].Type.ContainerOfStruct())
}

func TestBuildRejectsContainerOfContainer(t *testing.T) {
	row := schema.StructOf(
		schema.F("bad", schema.ArrayOf(schema.ArrayOf(schema.Int32()))),
	)
	_, err := schema.Build(row, nil)
	require.Error(t, err)
	var serr *schema.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "bad", serr.Path)
}

func TestBuildRejectsBadRow(t *testing.T) {
	_, err := schema.Build(schema.Int32(), nil)
	require.Error(t, err)
	_, err = schema.Build(nil, nil)
	require.Error(t, err)
}

func TestBuildRejectsBadKey(t *testing.T) {
	row := schema.StructOf(
		schema.F("k1", schema.String()),
		schema.F("s", schema.StructOf(schema.F("x", schema.Int32()))),
	)
	_, err := schema.Build(row, []string{"missing"})
	require.Error(t, err)
	_, err = schema.Build(row, []string{"s"})
	require.Error(t, err)
	_, err = schema.Build(row, []string{"k1"})
	require.NoError(t, err)
}

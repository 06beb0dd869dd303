// Package jsonlio loads newline-delimited JSON rows into an in-memory
// table. JSON nests naturally, so structs, arrays of structs, and maps come
// through with no flattening.
package jsonlio

import (
	"encoding/json"
	"io"

	"github.com/wdm0006/missingness/pkg/io/ioutils"
	"github.com/wdm0006/missingness/pkg/schema"
	"github.com/wdm0006/missingness/pkg/table"
)

// ReadTable reads one JSON object per line from path (optionally gzipped)
// and returns a table typed by tree. Absent object members and explicit
// nulls both read as missing.
func ReadTable(path string, tree *schema.Tree) (*table.Table, error) {
	rc, err := ioutils.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return Read(rc, tree)
}

// Read decodes rows from an arbitrary reader.
func Read(r io.Reader, tree *schema.Tree) (*table.Table, error) {
	dec := json.NewDecoder(r)
	var raw []map[string]any
	for {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		raw = append(raw, m)
	}
	return table.FromDecoded(tree, raw)
}

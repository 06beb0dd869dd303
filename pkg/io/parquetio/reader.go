// Package parquetio loads parquet files into an in-memory table. Nested
// groups decode to nested maps and repeated groups to slices, so nested
// schemas come through intact.
package parquetio

import (
	"errors"
	"io"
	"os"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/wdm0006/missingness/pkg/schema"
	"github.com/wdm0006/missingness/pkg/table"
)

// ReadTable decodes every row of a parquet file into a table typed by tree.
func ReadTable(path string, tree *schema.Tree) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, err
	}

	// A parquet schema cannot be inferred from map[string]any; read with the
	// schema stored in the file itself.
	r := parquet.NewGenericReader[map[string]any](f, pf.Schema())
	defer func() { _ = r.Close() }()

	var raw []map[string]any
	buf := make([]map[string]any, 256)
	for {
		// The reader reconstructs rows into the supplied maps and panics on
		// nil entries, so every slot must hold an allocated map.
		for i := range buf {
			if buf[i] == nil {
				buf[i] = make(map[string]any)
			}
		}
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			raw = append(raw, buf[i])
			buf[i] = nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return table.FromDecoded(tree, raw)
}

package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/wdm0006/missingness/pkg/io/ioutils"
	"github.com/wdm0006/missingness/pkg/plan"
)

// The cache is a flat CSV: field,counts,missing_keys,missing_percent, with
// missing_keys rendered as a JSON array of ordered key objects. A .gz suffix
// compresses transparently. Writing then reading reproduces the records
// field-for-field.

var cacheHeader = []string{"field", "counts", "missing_keys", "missing_percent"}

// CacheError reports an unambiguously corrupt or unwritable cache file.
type CacheError struct {
	Path string
	Err  error
}

func (e *CacheError) Error() string { return fmt.Sprintf("cache %s: %v", e.Path, e.Err) }
func (e *CacheError) Unwrap() error { return e.Err }

// Load reads a cached report. A missing file, or a file whose records fail
// to parse, is a cache miss and returns (nil, nil); a file that is not the
// cache format at all (wrong header) is unambiguous corruption and is
// surfaced as a *CacheError.
func Load(path string) (*Report, error) {
	rc, err := ioutils.OpenMaybeCompressed(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return nil, nil
		}
		return nil, &CacheError{Path: path, Err: err}
	}
	defer func() { _ = rc.Close() }()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = len(cacheHeader)
	hdr, err := r.Read()
	if err != nil {
		return nil, &CacheError{Path: path, Err: fmt.Errorf("reading header: %w", err)}
	}
	for i, want := range cacheHeader {
		if hdr[i] != want {
			return nil, &CacheError{Path: path, Err: fmt.Errorf("unexpected header %v", hdr)}
		}
	}

	var recs []Record
	for {
		row, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			// Malformed record: treat as a cache miss and recompute.
			return nil, nil
		}
		rec, err := parseRecord(row)
		if err != nil {
			return nil, nil
		}
		recs = append(recs, rec)
	}
	return &Report{records: recs}, nil
}

// Save writes the report to path, creating parent directories as needed. The
// in-memory report stays valid regardless of the outcome.
func Save(path string, r *Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &CacheError{Path: path, Err: err}
		}
	}
	wc, err := ioutils.CreateMaybeCompressed(path)
	if err != nil {
		return &CacheError{Path: path, Err: err}
	}
	w := csv.NewWriter(wc)
	werr := w.Write(cacheHeader)
	for _, rec := range r.records {
		if werr != nil {
			break
		}
		keys, err := json.Marshal(keysOrEmpty(rec.MissingKeys))
		if err != nil {
			werr = err
			break
		}
		werr = w.Write([]string{
			rec.Field,
			strconv.FormatInt(rec.Counts, 10),
			string(keys),
			strconv.FormatFloat(rec.MissingPercent, 'g', -1, 64),
		})
	}
	w.Flush()
	if werr == nil {
		werr = w.Error()
	}
	if cerr := wc.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return &CacheError{Path: path, Err: werr}
	}
	return nil
}

func parseRecord(row []string) (Record, error) {
	counts, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return Record{}, err
	}
	var keys []plan.RowKey
	if err := json.Unmarshal([]byte(row[2]), &keys); err != nil {
		return Record{}, err
	}
	if len(keys) == 0 {
		keys = nil
	}
	pct, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return Record{}, err
	}
	return Record{Field: row[0], Counts: counts, MissingKeys: keys, MissingPercent: pct}, nil
}

func keysOrEmpty(keys []plan.RowKey) []plan.RowKey {
	if keys == nil {
		return []plan.RowKey{}
	}
	return keys
}

// Package report builds the flat per-field missingness report: one record
// per field path, with a missing count, the affected row keys, and a
// percentage computed against parent-present contexts only.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/wdm0006/missingness/pkg/plan"
	"github.com/wdm0006/missingness/pkg/table"
)

// Record is one output row of the report. Immutable once built.
type Record struct {
	Field          string
	Counts         int64
	MissingKeys    []plan.RowKey
	MissingPercent float64
}

// Report is the ordered, read-only collection of records for one dataset.
type Report struct {
	records  []Record
	warnings []string
}

// Options control report construction.
type Options struct {
	// CachePath, when set, is consulted before any aggregation runs and
	// written after a successful build. A stale cache is never detected
	// here; invalidation is the caller's concern.
	CachePath string
}

// Build produces the report for a dataset: one plan, one aggregation call,
// one flatten. With a cache path set, an existing parseable cache file is
// returned without touching the dataset at all.
func Build(ctx context.Context, ds table.Dataset, opts Options) (*Report, error) {
	if opts.CachePath != "" {
		cached, err := Load(opts.CachePath)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}
	if ds == nil {
		return nil, fmt.Errorf("report: no cached report and no dataset to compute from")
	}

	p, err := plan.Build(ds.Schema())
	if err != nil {
		return nil, err
	}
	res, err := ds.Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	recs, err := Flatten(p, res)
	if err != nil {
		return nil, err
	}
	rep := &Report{records: recs}
	if opts.CachePath != "" {
		if err := Save(opts.CachePath, rep); err != nil {
			// The in-memory report is still valid; surface the write
			// failure as a warning rather than failing the build.
			rep.warnings = append(rep.warnings, err.Error())
		}
	}
	return rep, nil
}

// Flatten unflattens the single structured aggregation result into one
// record per field, in plan order: a field's record immediately before its
// children's subtrees. Percent is 0 when the denominator is 0.
func Flatten(p *plan.Plan, res *plan.Result) ([]Record, error) {
	if p == nil || res == nil {
		return nil, fmt.Errorf("report: nil plan or result")
	}
	recs := make([]Record, 0, len(p.Entries))
	for _, e := range p.Entries {
		count, ok := res.Counts[e.Path]
		if !ok {
			return nil, fmt.Errorf("report: result is missing path %s", e.Path)
		}
		denom := res.Denoms[e.Path]
		pct := 0.0
		if denom > 0 {
			pct = 100.0 * float64(count) / float64(denom)
		}
		recs = append(recs, Record{
			Field:          e.Path,
			Counts:         count,
			MissingKeys:    res.Keys[e.Path],
			MissingPercent: pct,
		})
	}
	return recs, nil
}

// Records returns the ordered records.
func (r *Report) Records() []Record { return r.records }

// Len returns the number of records.
func (r *Report) Len() int { return len(r.records) }

// Record returns the record for a dotted field path.
func (r *Report) Record(field string) (Record, bool) {
	for _, rec := range r.records {
		if rec.Field == field {
			return rec, true
		}
	}
	return Record{}, false
}

// Counts returns field path -> missing count.
func (r *Report) Counts() map[string]int64 {
	out := make(map[string]int64, len(r.records))
	for _, rec := range r.records {
		out[rec.Field] = rec.Counts
	}
	return out
}

// Warnings returns a summary of non-fatal problems encountered during the
// build, or "" when there were none.
func (r *Report) Warnings() string { return strings.Join(r.warnings, "; ") }

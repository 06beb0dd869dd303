package report

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/wdm0006/missingness/pkg/plan"
)

// DataFrame converts the report into a generic dataframe for downstream
// inspection and filtering. Missing keys are rendered in their JSON form.
func (r *Report) DataFrame() *dataframe.DataFrame {
	fields := dataframe.NewSeriesString("field", nil)
	counts := dataframe.NewSeriesInt64("counts", nil)
	keys := dataframe.NewSeriesString("missing_keys", nil)
	pct := dataframe.NewSeriesFloat64("missing_percent", nil)
	for _, rec := range r.records {
		fields.Append(rec.Field)
		counts.Append(rec.Counts)
		keys.Append(renderKeys(rec.MissingKeys))
		pct.Append(rec.MissingPercent)
	}
	return dataframe.NewDataFrame(fields, counts, keys, pct)
}

// WriteTable renders the report as a human-readable text table.
func (r *Report) WriteTable(w io.Writer) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"field", "counts", "missing_keys", "missing_percent"})
	tw.SetAutoWrapText(false)
	for _, rec := range r.records {
		tw.Append([]string{
			rec.Field,
			strconv.FormatInt(rec.Counts, 10),
			renderKeys(rec.MissingKeys),
			strconv.FormatFloat(rec.MissingPercent, 'f', 2, 64),
		})
	}
	tw.Render()
}

func renderKeys(keys []plan.RowKey) string {
	b, err := json.Marshal(keysOrEmpty(keys))
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Package golearn adapts a missingness report into
// github.com/sjwhitworth/golearn/base DenseInstances, for filtering or
// modeling field quality downstream.
package golearn

import (
	"github.com/sjwhitworth/golearn/base"

	"github.com/wdm0006/missingness/pkg/report"
)

// ToDenseInstances converts a report into golearn DenseInstances: the field
// path as a categorical attribute, counts and missing_percent as floats.
func ToDenseInstances(r *report.Report) (*base.DenseInstances, error) {
	field := new(base.CategoricalAttribute)
	field.SetName("field")
	attrs := []base.Attribute{
		field,
		base.NewFloatAttribute("counts"),
		base.NewFloatAttribute("missing_percent"),
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	recs := r.Records()
	if err := inst.Extend(len(recs)); err != nil {
		return nil, err
	}

	for i, rec := range recs {
		inst.Set(specs[0], i, base.Attribute.GetSysValFromString(attrs[0], rec.Field))
		inst.Set(specs[1], i, base.PackFloatToBytes(float64(rec.Counts)))
		inst.Set(specs[2], i, base.PackFloatToBytes(rec.MissingPercent))
	}
	if err := inst.AddClassAttribute(attrs[len(attrs)-1]); err != nil {
		return nil, err
	}
	return inst, nil
}

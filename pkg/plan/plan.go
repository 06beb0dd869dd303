package plan

import (
	"github.com/wdm0006/missingness/pkg/schema"
)

// Entry is the triple of sub-aggregates planned for one field: its missing
// count, the row keys where it is missing, and its denominator (the count of
// parent-present contexts its percentage is computed against).
type Entry struct {
	Path  string
	Count Agg
	Keys  Agg
	Denom Agg
}

// Plan is the single combined aggregation for a whole schema tree. Entries
// are ordered depth-first, a field before its children, so a structured
// result can be unflattened back into one report row per field. The entire
// plan is designed to execute in exactly one aggregation call.
type Plan struct {
	Key     []string
	Entries []Entry
}

// Entry returns the planned entry for a dotted field path.
func (p *Plan) Entry(path string) (Entry, bool) {
	for _, e := range p.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// Build walks the schema tree once and emits the combined plan.
//
// For a row-scope field f with parent p the planned predicates follow the
// recursive presence contract: present(f) = !missing(f) && present(p), with
// the root always present. selfMissing(f) = present(p) && missing(f), so
// rows where the parent is already missing count toward neither the
// numerator nor the denominator.
//
// Fields inside a container-of-struct are planned per element: the count and
// denominator become sums over the container's elements (gated on the
// container chain being present at row level), while key attribution stays
// row-granular: a row's key is collected once if any of its elements has the
// field missing. A null element counts one missing per direct child and still
// counts in each child's denominator; deeper descendants fall out of both
// through the usual parent gate.
func Build(tree *schema.Tree) (*Plan, error) {
	if tree == nil || tree.Root == nil {
		return nil, &schema.Error{Reason: "nil schema tree"}
	}
	p := &Plan{Key: append([]string(nil), tree.Key...)}
	for _, c := range tree.Root.Children {
		p.walkRow(c, &TrueLit{})
	}
	return p, nil
}

// walkRow plans a field evaluated once per row. parentPresent is the
// conjunction of non-null checks over every ancestor.
func (p *Plan) walkRow(f *schema.Field, parentPresent Expr) {
	selfMissing := conj(parentPresent, &IsMissing{X: &FieldRef{Path: f.Path}})
	p.Entries = append(p.Entries, Entry{
		Path:  f.PathString(),
		Count: &CountWhere{Pred: selfMissing},
		Keys:  &CollectKeys{Pred: selfMissing},
		Denom: &CountWhere{Pred: parentPresent},
	})

	switch {
	case f.Type.Kind == schema.KindStruct:
		present := conj(parentPresent, notMissingField(f.Path))
		for _, c := range f.Children {
			p.walkRow(c, present)
		}
	case f.Type.ContainerOfStruct():
		gate := conj(parentPresent, notMissingField(f.Path))
		chain := [][]string{f.Path}
		for _, c := range f.Children {
			p.walkElem(c, gate, chain, &TrueLit{}, nil)
		}
	}
}

// walkElem plans a field evaluated once per container element. gate is the
// row-level presence of the outermost container; chain locates the innermost
// container; elemPresent is the presence conjunction over the struct ancestors
// between the element root (exclusive, so a null element reads as missing for
// its direct children) and f's parent; rel is f's parent's path relative to
// the element.
func (p *Plan) walkElem(f *schema.Field, gate Expr, chain [][]string, elemPresent Expr, rel []string) {
	relPath := append(append([]string(nil), rel...), f.Name)
	selfMissing := conj(elemPresent, &IsMissing{X: &ElemRef{Path: relPath}})
	p.Entries = append(p.Entries, Entry{
		Path:  f.PathString(),
		Count: &SumElements{Scope: gate, Containers: chain, Pred: selfMissing},
		Keys:  &CollectKeys{Pred: conj(gate, &AnyElement{Containers: chain, Pred: selfMissing})},
		Denom: &SumElements{Scope: gate, Containers: chain, Pred: elemPresent},
	})

	switch {
	case f.Type.Kind == schema.KindStruct:
		present := conj(elemPresent, notMissingElem(relPath))
		for _, c := range f.Children {
			p.walkElem(c, gate, chain, present, relPath)
		}
	case f.Type.ContainerOfStruct():
		// Nested container: extend the chain with a path relative to the
		// current element. Null inner containers simply contribute no
		// elements, so the row gate is unchanged.
		inner := append(append([][]string(nil), chain...), relPath)
		for _, c := range f.Children {
			p.walkElem(c, gate, inner, &TrueLit{}, nil)
		}
	}
}

// Package plan derives, from a schema tree, the single combined aggregation
// a dataset engine must run to measure per-field missingness in one pass.
//
// The expression language is deliberately tiny: null checks over row paths or
// container-element paths, boolean conjunction and negation, and an
// existential quantifier over container elements. Aggregations are counts,
// row-key collection, and element sums. A backend compiles or interprets
// these descriptors; nothing here touches data.
package plan

// Expr is a boolean-valued predicate over one row (or, where ElemRef appears,
// over one container element).
type Expr interface{ exprNode() }

// TrueLit is the constant true predicate; the row root's presence.
type TrueLit struct{}

// FieldRef names a field by its absolute path from the row root.
type FieldRef struct{ Path []string }

// ElemRef names a field relative to the enclosing container element. An
// empty path refers to the element itself.
type ElemRef struct{ Path []string }

// IsMissing is true where the referenced value is null. Referencing through
// a null struct yields missing.
type IsMissing struct{ X Expr }

// Not negates a predicate.
type Not struct{ X Expr }

// And is boolean conjunction.
type And struct{ L, R Expr }

// AnyElement is a row-level predicate: true when at least one element
// reached through the container chain satisfies Pred. Containers[0] is an
// absolute row path; each subsequent entry is resolved inside an element of
// the previous container.
type AnyElement struct {
	Containers [][]string
	Pred       Expr
}

func (*TrueLit) exprNode()    {}
func (*FieldRef) exprNode()   {}
func (*ElemRef) exprNode()    {}
func (*IsMissing) exprNode()  {}
func (*Not) exprNode()        {}
func (*And) exprNode()        {}
func (*AnyElement) exprNode() {}

// Agg is one sub-aggregate of the combined expression.
type Agg interface{ aggNode() }

// CountWhere counts rows satisfying Pred.
type CountWhere struct{ Pred Expr }

// CollectKeys collects the row key of every row satisfying Pred. Pred is
// row-level, so a row contributes its key at most once.
type CollectKeys struct{ Pred Expr }

// SumElements counts, across all rows satisfying the row-level Scope, the
// elements reached through the container chain that satisfy the
// element-level Pred. Null or absent containers anywhere along the chain
// contribute no elements.
type SumElements struct {
	Scope      Expr
	Containers [][]string
	Pred       Expr
}

func (*CountWhere) aggNode()  {}
func (*CollectKeys) aggNode() {}
func (*SumElements) aggNode() {}

// conj builds L AND R, folding away constant true.
func conj(l, r Expr) Expr {
	if _, ok := l.(*TrueLit); ok {
		return r
	}
	if _, ok := r.(*TrueLit); ok {
		return l
	}
	return &And{L: l, R: r}
}

func notMissingField(path []string) Expr { return &Not{X: &IsMissing{X: &FieldRef{Path: path}}} }
func notMissingElem(path []string) Expr  { return &Not{X: &IsMissing{X: &ElemRef{Path: path}}} }

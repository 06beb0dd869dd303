package table

import (
	"context"
	"fmt"

	"github.com/wdm0006/missingness/pkg/plan"
)

// Aggregate evaluates the combined plan in a single pass over the rows and
// returns one structured result mirroring the plan's shape. The context is
// checked between rows; cancellation fails the whole aggregation.
func (t *Table) Aggregate(ctx context.Context, p *plan.Plan) (*plan.Result, error) {
	t.aggregateCalls++
	if p == nil {
		return nil, &EngineError{Op: "aggregate", Err: fmt.Errorf("nil plan")}
	}
	res := plan.NewResult()
	for _, e := range p.Entries {
		res.Counts[e.Path] = 0
		res.Denoms[e.Path] = 0
	}
	for i, row := range t.rows {
		if err := ctx.Err(); err != nil {
			return nil, &EngineError{Op: "aggregate", Err: err}
		}
		key := t.Key(i)
		for _, e := range p.Entries {
			n, err := evalAgg(row, e.Count)
			if err != nil {
				return nil, &EngineError{Op: "aggregate " + e.Path, Err: err}
			}
			res.Counts[e.Path] += n

			d, err := evalAgg(row, e.Denom)
			if err != nil {
				return nil, &EngineError{Op: "aggregate " + e.Path, Err: err}
			}
			res.Denoms[e.Path] += d

			collect, ok := e.Keys.(*plan.CollectKeys)
			if !ok {
				return nil, &EngineError{Op: "aggregate " + e.Path, Err: fmt.Errorf("keys aggregate must collect row keys, got %T", e.Keys)}
			}
			hit, err := evalPred(row, nil, collect.Pred)
			if err != nil {
				return nil, &EngineError{Op: "aggregate " + e.Path, Err: err}
			}
			if hit {
				res.Keys[e.Path] = append(res.Keys[e.Path], key)
			}
		}
	}
	return res, nil
}

func evalAgg(row Row, a plan.Agg) (int64, error) {
	switch x := a.(type) {
	case *plan.CountWhere:
		hit, err := evalPred(row, nil, x.Pred)
		if err != nil {
			return 0, err
		}
		if hit {
			return 1, nil
		}
		return 0, nil
	case *plan.SumElements:
		in, err := evalPred(row, nil, x.Scope)
		if err != nil || !in {
			return 0, err
		}
		var n int64
		err = forEachElement(row, x.Containers, func(elem any) error {
			hit, err := evalPred(row, elem, x.Pred)
			if err != nil {
				return err
			}
			if hit {
				n++
			}
			return nil
		})
		return n, err
	default:
		return 0, fmt.Errorf("unsupported aggregate %T", a)
	}
}

func evalPred(row Row, elem any, e plan.Expr) (bool, error) {
	switch x := e.(type) {
	case *plan.TrueLit:
		return true, nil
	case *plan.IsMissing:
		switch ref := x.X.(type) {
		case *plan.FieldRef:
			return lookup(row, ref.Path) == nil, nil
		case *plan.ElemRef:
			return lookupElem(elem, ref.Path) == nil, nil
		default:
			return false, fmt.Errorf("is-missing over unsupported reference %T", x.X)
		}
	case *plan.Not:
		v, err := evalPred(row, elem, x.X)
		return !v, err
	case *plan.And:
		l, err := evalPred(row, elem, x.L)
		if err != nil || !l {
			return false, err
		}
		return evalPred(row, elem, x.R)
	case *plan.AnyElement:
		found := false
		err := forEachElement(row, x.Containers, func(el any) error {
			if found {
				return nil
			}
			hit, err := evalPred(row, el, x.Pred)
			if err != nil {
				return err
			}
			if hit {
				found = true
			}
			return nil
		})
		return found, err
	default:
		return false, fmt.Errorf("unsupported predicate %T", e)
	}
}

// lookup resolves an absolute row path; any null along the way yields nil.
func lookup(row Row, path []string) any {
	var cur any = map[string]any(row)
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[seg]
		if cur == nil {
			return nil
		}
	}
	return cur
}

// lookupElem resolves a path relative to a container element; the empty path
// is the element itself.
func lookupElem(elem any, path []string) any {
	cur := elem
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[seg]
		if cur == nil {
			return nil
		}
	}
	return cur
}

// forEachElement descends a container chain, invoking fn for every innermost
// element. Null containers and null intermediate elements contribute
// nothing.
func forEachElement(row Row, chain [][]string, fn func(any) error) error {
	if len(chain) == 0 {
		return fmt.Errorf("element sum without a container chain")
	}
	return descend(lookup(row, chain[0]), chain[1:], fn)
}

func descend(container any, rest [][]string, fn func(any) error) error {
	arr, ok := container.([]any)
	if !ok {
		return nil
	}
	for _, el := range arr {
		if len(rest) == 0 {
			if err := fn(el); err != nil {
				return err
			}
			continue
		}
		if err := descend(lookupElem(el, rest[0]), rest[1:], fn); err != nil {
			return err
		}
	}
	return nil
}

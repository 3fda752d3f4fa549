package dataflow

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/junkd0g/vgcharts/internal/expr"
	"github.com/junkd0g/vgcharts/internal/vegalite"
)

// Preview runs a spec's transform pipeline over rows. Encoding-level
// aggregates are left to the renderer.
func Preview(spec *vegalite.Spec, rows []Row) ([]Row, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return Run(rows, spec.Transform)
}

// Run executes steps in order. Input rows are never modified.
func Run(rows []Row, steps []vegalite.Transform) ([]Row, error) {
	out := rows
	for i, step := range steps {
		var err error
		switch s := step.(type) {
		case vegalite.Filter:
			out = filter(out, s)
		case vegalite.Calculate:
			out = calculate(out, s)
		case vegalite.Aggregate:
			out = aggregate(out, s)
		case vegalite.JoinAggregate:
			out = joinAggregate(out, s)
		case vegalite.Window:
			out, err = window(out, s)
		case vegalite.Fold:
			out = fold(out, s)
		default:
			err = fmt.Errorf("unsupported transform %T", step)
		}
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return out, nil
}

func clone(r Row) Row {
	c := make(Row, len(r)+2)
	for k, v := range r {
		c[k] = v
	}
	return c
}

func filter(rows []Row, f vegalite.Filter) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if expr.Truthy(f.Expr.Eval(r)) {
			out = append(out, r)
		}
	}
	return out
}

func calculate(rows []Row, c vegalite.Calculate) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		n := clone(r)
		n[c.As] = c.Expr.Eval(r)
		out[i] = n
	}
	return out
}

func fold(rows []Row, f vegalite.Fold) []Row {
	out := make([]Row, 0, len(rows)*len(f.Fields))
	for _, r := range rows {
		for _, field := range f.Fields {
			n := clone(r)
			n[f.As[0]] = field
			n[f.As[1]] = r[field]
			out = append(out, n)
		}
	}
	return out
}

type group struct {
	key  Row
	rows []Row
}

// groupRows partitions rows by the groupby values, in first-seen order.
func groupRows(rows []Row, by []string) []*group {
	index := make(map[string]*group)
	var order []*group
	for _, r := range rows {
		parts := make([]string, len(by))
		for i, f := range by {
			parts[i] = fmt.Sprintf("%T:%v", r[f], r[f])
		}
		k := strings.Join(parts, "\x1f")
		g, ok := index[k]
		if !ok {
			g = &group{key: make(Row, len(by))}
			for _, f := range by {
				g.key[f] = r[f]
			}
			index[k] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, r)
	}
	return order
}

// summarize computes one aggregate op. Sum and mean skip values that are
// not valid numbers; a mean over no valid values is nil.
func summarize(rows []Row, op vegalite.AggregateOp) any {
	switch op.Op {
	case vegalite.OpCount:
		return float64(len(rows))
	case vegalite.OpSum, vegalite.OpMean:
		var total float64
		var n int
		for _, r := range rows {
			v, ok := expr.ToFloat(r[op.Field])
			if !ok || math.IsNaN(v) {
				continue
			}
			total += v
			n++
		}
		if op.Op == vegalite.OpSum {
			return total
		}
		if n == 0 {
			return nil
		}
		return total / float64(n)
	}
	return nil
}

func aggregate(rows []Row, a vegalite.Aggregate) []Row {
	groups := groupRows(rows, a.GroupBy)
	out := make([]Row, 0, len(groups))
	for _, g := range groups {
		n := clone(g.key)
		for _, op := range a.Ops {
			n[op.As] = summarize(g.rows, op)
		}
		out = append(out, n)
	}
	return out
}

func joinAggregate(rows []Row, j vegalite.JoinAggregate) []Row {
	out := make([]Row, 0, len(rows))
	for _, g := range groupRows(rows, j.GroupBy) {
		values := make(map[string]any, len(j.Ops))
		for _, op := range j.Ops {
			values[op.As] = summarize(g.rows, op)
		}
		for _, r := range g.rows {
			n := clone(r)
			for k, v := range values {
				n[k] = v
			}
			out = append(out, n)
		}
	}
	return out
}

// window evaluates each GroupBy partition separately. Rows are sorted by the
// sort fields (stable, so peers keep input order); rows with equal sort
// values are peers. Peers share a rank, and a running sum covers every row
// up to and including the last peer.
func window(rows []Row, w vegalite.Window) ([]Row, error) {
	cmp := func(a, b Row) int {
		for _, s := range w.Sort {
			c := compare(a[s.Field], b[s.Field])
			if s.Order == vegalite.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	}

	out := make([]Row, 0, len(rows))
	for _, g := range groupRows(rows, w.GroupBy) {
		part := make([]Row, len(g.rows))
		for i, r := range g.rows {
			part[i] = clone(r)
		}
		sort.SliceStable(part, func(i, j int) bool { return cmp(part[i], part[j]) < 0 })

		for _, op := range w.Ops {
			if err := windowOp(part, op, cmp); err != nil {
				return nil, err
			}
		}
		out = append(out, part...)
	}
	return out, nil
}

func windowOp(part []Row, op vegalite.WindowOp, cmp func(a, b Row) int) error {
	switch op.Op {
	case vegalite.OpRowNumber:
		for i, r := range part {
			r[op.As] = float64(i + 1)
		}
	case vegalite.OpRank, vegalite.OpDenseRank:
		rank, dense := 0, 0
		for i, r := range part {
			if i == 0 || cmp(part[i-1], r) != 0 {
				rank = i + 1
				dense++
			}
			if op.Op == vegalite.OpRank {
				r[op.As] = float64(rank)
			} else {
				r[op.As] = float64(dense)
			}
		}
	case vegalite.OpSum:
		var total float64
		for start := 0; start < len(part); {
			end := start + 1
			for end < len(part) && cmp(part[start], part[end]) == 0 {
				end++
			}
			for _, r := range part[start:end] {
				if v, ok := expr.ToFloat(r[op.Field]); ok && !math.IsNaN(v) {
					total += v
				}
			}
			for _, r := range part[start:end] {
				r[op.As] = total
			}
			start = end
		}
	default:
		return fmt.Errorf("unsupported window op %q", op.Op)
	}
	return nil
}

// compare orders nil first, then numbers, then strings.
func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	af, aok := a.(float64)
	bf, bok := b.(float64)
	switch {
	case aok && bok:
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

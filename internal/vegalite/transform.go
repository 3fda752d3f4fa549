package vegalite

import (
	"encoding/json"
	"fmt"

	"github.com/junkd0g/vgcharts/internal/expr"
)

// StepKind names a transform variant.
type StepKind string

const (
	StepFilter        StepKind = "filter"
	StepCalculate     StepKind = "calculate"
	StepAggregate     StepKind = "aggregate"
	StepJoinAggregate StepKind = "joinaggregate"
	StepWindow        StepKind = "window"
	StepFold          StepKind = "fold"
)

// Transform is one step of a spec's data pipeline. The set of variants is
// closed: Filter, Calculate, Aggregate, JoinAggregate, Window and Fold.
type Transform interface {
	json.Marshaler
	Kind() StepKind

	// reads lists the fields the step consumes.
	reads() []string
	// outputs lists the fields the step derives.
	outputs() []string
	// next derives the available field set after the step.
	next(avail fieldSet) fieldSet
	check() error
}

// Aggregate operations.
const (
	OpSum   = "sum"
	OpMean  = "mean"
	OpCount = "count"
	OpRank  = "rank"

	OpDenseRank = "dense_rank"
	OpRowNumber = "row_number"
)

// Sort orders.
const (
	Ascending  = "ascending"
	Descending = "descending"
)

// Filter keeps rows for which Expr is truthy.
type Filter struct {
	Expr expr.Expr
}

func (f Filter) Kind() StepKind  { return StepFilter }
func (f Filter) reads() []string { return expr.Refs(f.Expr) }

func (f Filter) outputs() []string            { return nil }
func (f Filter) next(avail fieldSet) fieldSet { return avail }

func (f Filter) check() error {
	if f.Expr == nil {
		return fmt.Errorf("filter: missing expression")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"filter": f.Expr.String()})
}

// Calculate derives field As from Expr.
type Calculate struct {
	Expr expr.Expr
	As   string
}

func (c Calculate) Kind() StepKind  { return StepCalculate }
func (c Calculate) reads() []string { return expr.Refs(c.Expr) }

func (c Calculate) outputs() []string            { return []string{c.As} }
func (c Calculate) next(avail fieldSet) fieldSet { return avail.with(c.As) }

func (c Calculate) check() error {
	if c.Expr == nil || c.As == "" {
		return fmt.Errorf("calculate: expression and output field are required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Calculate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Calculate string `json:"calculate"`
		As        string `json:"as"`
	}{c.Expr.String(), c.As})
}

// AggregateOp is one summary computed per group.
type AggregateOp struct {
	Op    string `json:"op"`
	Field string `json:"field,omitempty"`
	As    string `json:"as"`
}

func checkOps(kind StepKind, ops []AggregateOp) error {
	if len(ops) == 0 {
		return fmt.Errorf("%s: no operations", kind)
	}
	for _, op := range ops {
		switch op.Op {
		case OpSum, OpMean:
			if op.Field == "" {
				return fmt.Errorf("%s: %s needs a field", kind, op.Op)
			}
		case OpCount:
		default:
			return fmt.Errorf("%s: unsupported op %q", kind, op.Op)
		}
		if op.As == "" {
			return fmt.Errorf("%s: %s needs an output field", kind, op.Op)
		}
	}
	return nil
}

func opOutputs(ops []AggregateOp) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.As)
	}
	return out
}

func opReads(ops []AggregateOp, groupBy []string) []string {
	out := append([]string(nil), groupBy...)
	for _, op := range ops {
		if op.Field != "" {
			out = append(out, op.Field)
		}
	}
	return out
}

// Aggregate collapses rows into one row per GroupBy combination. Only the
// group keys and the op outputs survive.
type Aggregate struct {
	Ops     []AggregateOp
	GroupBy []string
}

func (a Aggregate) Kind() StepKind    { return StepAggregate }
func (a Aggregate) reads() []string   { return opReads(a.Ops, a.GroupBy) }
func (a Aggregate) check() error      { return checkOps(StepAggregate, a.Ops) }
func (a Aggregate) outputs() []string { return opOutputs(a.Ops) }

func (a Aggregate) next(_ fieldSet) fieldSet {
	out := newFieldSet(a.GroupBy...)
	for _, op := range a.Ops {
		out = out.with(op.As)
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (a Aggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Aggregate []AggregateOp `json:"aggregate"`
		GroupBy   []string      `json:"groupby,omitempty"`
	}{a.Ops, a.GroupBy})
}

// JoinAggregate attaches per-group summaries to every row.
type JoinAggregate struct {
	Ops     []AggregateOp
	GroupBy []string
}

func (j JoinAggregate) Kind() StepKind    { return StepJoinAggregate }
func (j JoinAggregate) reads() []string   { return opReads(j.Ops, j.GroupBy) }
func (j JoinAggregate) check() error      { return checkOps(StepJoinAggregate, j.Ops) }
func (j JoinAggregate) outputs() []string { return opOutputs(j.Ops) }

func (j JoinAggregate) next(avail fieldSet) fieldSet {
	for _, op := range j.Ops {
		avail = avail.with(op.As)
	}
	return avail
}

// MarshalJSON implements json.Marshaler.
func (j JoinAggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		JoinAggregate []AggregateOp `json:"joinaggregate"`
		GroupBy       []string      `json:"groupby,omitempty"`
	}{j.Ops, j.GroupBy})
}

// WindowOp is a window function output. Field is read by sum only.
type WindowOp struct {
	Op    string `json:"op"`
	Field string `json:"field,omitempty"`
	As    string `json:"as"`
}

// SortField orders rows by one field.
type SortField struct {
	Field string `json:"field"`
	Order string `json:"order,omitempty"`
}

// Window computes ranking and running-sum functions over each GroupBy
// partition, sorted by Sort. Sum uses the default frame: every row up to and
// including the current row's sort peers.
type Window struct {
	Ops     []WindowOp
	Sort    []SortField
	GroupBy []string
}

func (w Window) Kind() StepKind { return StepWindow }

func (w Window) reads() []string {
	out := make([]string, 0, len(w.Sort)+len(w.GroupBy))
	for _, s := range w.Sort {
		out = append(out, s.Field)
	}
	for _, op := range w.Ops {
		if op.Field != "" {
			out = append(out, op.Field)
		}
	}
	return append(out, w.GroupBy...)
}

func (w Window) outputs() []string {
	out := make([]string, 0, len(w.Ops))
	for _, op := range w.Ops {
		out = append(out, op.As)
	}
	return out
}

func (w Window) next(avail fieldSet) fieldSet {
	for _, op := range w.Ops {
		avail = avail.with(op.As)
	}
	return avail
}

func (w Window) check() error {
	if len(w.Ops) == 0 {
		return fmt.Errorf("window: no operations")
	}
	for _, op := range w.Ops {
		if op.As == "" {
			return fmt.Errorf("window: op %q has no output field", op.Op)
		}
		switch op.Op {
		case OpRank, OpDenseRank:
			if len(w.Sort) == 0 {
				return fmt.Errorf("window: rank needs a sort order")
			}
		case OpRowNumber:
		case OpSum:
			if op.Field == "" {
				return fmt.Errorf("window: sum needs a field")
			}
		default:
			return fmt.Errorf("window: unsupported op %q", op.Op)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (w Window) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Window  []WindowOp  `json:"window"`
		Sort    []SortField `json:"sort,omitempty"`
		GroupBy []string    `json:"groupby,omitempty"`
	}{w.Ops, w.Sort, w.GroupBy})
}

// Fold reshapes the listed columns into key/value rows.
type Fold struct {
	Fields []string
	As     [2]string
}

func (f Fold) Kind() StepKind  { return StepFold }
func (f Fold) reads() []string { return f.Fields }

func (f Fold) outputs() []string            { return f.As[:] }
func (f Fold) next(avail fieldSet) fieldSet { return avail.with(f.As[0]).with(f.As[1]) }

func (f Fold) check() error {
	if len(f.Fields) == 0 {
		return fmt.Errorf("fold: no fields")
	}
	if f.As[0] == "" || f.As[1] == "" {
		return fmt.Errorf("fold: key and value names are required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Fold) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Fold []string `json:"fold"`
		As   []string `json:"as"`
	}{f.Fields, f.As[:]})
}

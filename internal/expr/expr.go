// Package expr builds Vega expressions as typed values.
//
// Every node renders to the expression source the browser renderer evaluates
// (String) and can also be evaluated against a single row in Go (Eval), so a
// filter or derived field is written once and checked locally.
package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row is one datum: column name to value. Numeric values are float64,
// missing values are nil.
type Row map[string]any

// Expr is a Vega expression node.
type Expr interface {
	String() string
	Eval(row Row) any
}

type field string

// Field references datum.<name>.
func Field(name string) Expr { return field(name) }

func (f field) String() string {
	name := string(f)
	if isIdent(name) {
		return "datum." + name
	}
	return "datum[" + quote(name) + "]"
}

func (f field) Eval(row Row) any { return row[string(f)] }

type str string

// Str is a string literal.
func Str(s string) Expr { return str(s) }

func (s str) String() string { return quote(string(s)) }
func (s str) Eval(_ Row) any { return string(s) }

type num float64

// Num is a numeric literal.
func Num(v float64) Expr { return num(v) }

func (n num) String() string { return strconv.FormatFloat(float64(n), 'f', -1, 64) }
func (n num) Eval(_ Row) any { return float64(n) }

type null struct{}

// Null is the null literal.
func Null() Expr { return null{} }

func (null) String() string { return "null" }
func (null) Eval(_ Row) any { return nil }

type binary struct {
	op   string
	l, r Expr
}

// Eq is strict equality (===).
func Eq(l, r Expr) Expr { return binary{op: "===", l: l, r: r} }

// NotEq is loose inequality (!=), which treats null and undefined alike.
func NotEq(l, r Expr) Expr { return binary{op: "!=", l: l, r: r} }

// LE is l <= r.
func LE(l, r Expr) Expr { return binary{op: "<=", l: l, r: r} }

// Div is l / r.
func Div(l, r Expr) Expr { return binary{op: "/", l: l, r: r} }

// Add is numeric l + r; string concatenation is not evaluated locally.
func Add(l, r Expr) Expr { return binary{op: "+", l: l, r: r} }

// Sub is l - r.
func Sub(l, r Expr) Expr { return binary{op: "-", l: l, r: r} }

func (b binary) String() string { return b.l.String() + " " + b.op + " " + b.r.String() }

func (b binary) Eval(row Row) any {
	l, r := b.l.Eval(row), b.r.Eval(row)
	switch b.op {
	case "===":
		return equal(l, r)
	case "!=":
		return !equal(l, r)
	case "<=":
		lf, lok := ToFloat(l)
		rf, rok := ToFloat(r)
		return lok && rok && lf <= rf
	case "/", "+", "-":
		lf, lok := ToFloat(l)
		rf, rok := ToFloat(r)
		if !lok || !rok {
			return math.NaN()
		}
		switch b.op {
		case "+":
			return lf + rf
		case "-":
			return lf - rf
		}
		return lf / rf
	}
	return nil
}

type and []Expr

// And joins terms with &&.
func And(terms ...Expr) Expr { return and(terms) }

func (a and) String() string {
	parts := make([]string, len(a))
	for i, t := range a {
		parts[i] = t.String()
	}
	return strings.Join(parts, " && ")
}

func (a and) Eval(row Row) any {
	for _, t := range a {
		if !Truthy(t.Eval(row)) {
			return false
		}
	}
	return true
}

type in struct {
	set   []string
	value Expr
}

// In tests membership of value in a fixed string set using indexof.
func In(value Expr, set ...string) Expr { return in{set: set, value: value} }

func (i in) String() string {
	items := make([]string, len(i.set))
	for k, s := range i.set {
		items[k] = quote(s)
	}
	return fmt.Sprintf("indexof([%s], %s) >= 0", strings.Join(items, ","), i.value)
}

func (i in) Eval(row Row) any {
	v, ok := i.value.Eval(row).(string)
	if !ok {
		return false
	}
	for _, s := range i.set {
		if s == v {
			return true
		}
	}
	return false
}

type call struct {
	name string
	arg  Expr
}

// IsValid is true when the value is neither null nor NaN.
func IsValid(e Expr) Expr { return call{name: "isValid", arg: e} }

// ToNumber coerces to a number; null and empty strings stay null.
func ToNumber(e Expr) Expr { return call{name: "toNumber", arg: e} }

func (c call) String() string { return c.name + "(" + c.arg.String() + ")" }

func (c call) Eval(row Row) any {
	v := c.arg.Eval(row)
	switch c.name {
	case "isValid":
		if v == nil {
			return false
		}
		if f, ok := v.(float64); ok && math.IsNaN(f) {
			return false
		}
		return true
	case "toNumber":
		if v == nil {
			return nil
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return nil
		}
		if f, ok := ToFloat(v); ok {
			return f
		}
		return math.NaN()
	}
	return nil
}

// Case is one branch of a conditional chain.
type Case struct {
	When Expr
	Then Expr
}

type cond struct {
	cases []Case
	other Expr
}

// Cond renders a ternary chain: c1 ? t1 : c2 ? t2 : other.
func Cond(other Expr, cases ...Case) Expr { return cond{cases: cases, other: other} }

func (c cond) String() string {
	var sb strings.Builder
	for _, cs := range c.cases {
		sb.WriteString(cs.When.String())
		sb.WriteString(" ? ")
		sb.WriteString(cs.Then.String())
		sb.WriteString(" : ")
	}
	sb.WriteString(c.other.String())
	return sb.String()
}

func (c cond) Eval(row Row) any {
	for _, cs := range c.cases {
		if Truthy(cs.When.Eval(row)) {
			return cs.Then.Eval(row)
		}
	}
	return c.other.Eval(row)
}

// Truthy follows JavaScript truthiness for the value kinds rows carry.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case string:
		return t != ""
	}
	return true
}

// ToFloat converts numeric values and numeric strings.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func equal(l, r any) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	switch lv := l.(type) {
	case string:
		rv, ok := r.(string)
		return ok && lv == rv
	case bool:
		rv, ok := r.(bool)
		return ok && lv == rv
	}
	lf, lok := ToFloat(l)
	if _, isStr := r.(string); isStr || !lok {
		return false
	}
	rf, rok := ToFloat(r)
	return rok && lf == rf
}

func quote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Refs lists the datum fields an expression reads, in first-use order.
func Refs(e Expr) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case field:
			if !seen[string(n)] {
				seen[string(n)] = true
				out = append(out, string(n))
			}
		case binary:
			walk(n.l)
			walk(n.r)
		case and:
			for _, t := range n {
				walk(t)
			}
		case in:
			walk(n.value)
		case call:
			walk(n.arg)
		case cond:
			for _, cs := range n.cases {
				walk(cs.When)
				walk(cs.Then)
			}
			walk(n.other)
		}
	}
	if e != nil {
		walk(e)
	}
	return out
}

package vegalite

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkd0g/vgcharts/internal/expr"
)

func barSpec(steps ...Transform) *Spec {
	return &Spec{
		Schema:    SchemaURL,
		Width:     WidthContainer,
		Height:    300,
		Autosize:  FitPadding(),
		Data:      CSV("data.csv"),
		Transform: steps,
		Mark:      &Mark{Type: MarkBar},
		Encoding: &Encoding{
			X: &Channel{Field: "Genre", Type: Nominal},
		},
	}
}

func TestMarkMarshal(t *testing.T) {
	b, err := json.Marshal(Mark{Type: MarkBar})
	require.NoError(t, err)
	assert.JSONEq(t, `"bar"`, string(b))

	b, err = json.Marshal(Mark{Type: MarkLine, Point: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"line","point":true}`, string(b))

	b, err = json.Marshal(Mark{Type: MarkArc, InnerRadius: 55})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"arc","innerRadius":55}`, string(b))
}

func TestChannelHideLegend(t *testing.T) {
	b, err := json.Marshal(Channel{Field: "company_group", Type: Nominal, HideLegend: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"field":"company_group","type":"nominal","legend":null}`, string(b))
}

func TestTransformMarshal(t *testing.T) {
	steps := []Transform{
		Filter{Expr: expr.Eq(expr.Field("Genre"), expr.Str("Action"))},
		Fold{Fields: []string{"NA_Sales", "EU_Sales"}, As: [2]string{"region", "sales"}},
		Aggregate{Ops: []AggregateOp{{Op: OpSum, Field: "sales", As: "total"}}, GroupBy: []string{"region"}},
		JoinAggregate{Ops: []AggregateOp{{Op: OpSum, Field: "total", As: "all"}}},
		Window{Ops: []WindowOp{{Op: OpRank, As: "r"}}, Sort: []SortField{{Field: "total", Order: Descending}}},
		Window{Ops: []WindowOp{{Op: OpRowNumber, As: "n"}}, GroupBy: []string{"region"}},
		Window{Ops: []WindowOp{{Op: OpSum, Field: "n", As: "running"}}, Sort: []SortField{{Field: "total", Order: Descending}}},
		Calculate{Expr: expr.Div(expr.Field("total"), expr.Field("all")), As: "pct"},
	}
	b, err := json.Marshal(steps)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"filter": "datum.Genre === 'Action'"},
		{"fold": ["NA_Sales","EU_Sales"], "as": ["region","sales"]},
		{"aggregate": [{"op":"sum","field":"sales","as":"total"}], "groupby": ["region"]},
		{"joinaggregate": [{"op":"sum","field":"total","as":"all"}]},
		{"window": [{"op":"rank","as":"r"}], "sort": [{"field":"total","order":"descending"}]},
		{"window": [{"op":"row_number","as":"n"}], "groupby": ["region"]},
		{"window": [{"op":"sum","field":"n","as":"running"}], "sort": [{"field":"total","order":"descending"}]},
		{"calculate": "datum.total / datum.all", "as": "pct"}
	]`, string(b))
}

func TestConfigBackgroundIsNull(t *testing.T) {
	b, err := json.Marshal(Config{})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	v, ok := out["background"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestValidate(t *testing.T) {
	t.Run("valid pipeline", func(t *testing.T) {
		spec := barSpec(
			JoinAggregate{Ops: []AggregateOp{{Op: OpSum, Field: "Global_Sales", As: "total"}}, GroupBy: []string{"Platform"}},
			Window{Ops: []WindowOp{{Op: OpRank, As: "rank"}}, Sort: []SortField{{Field: "total", Order: Descending}}},
			Filter{Expr: expr.LE(expr.Field("rank"), expr.Num(10))},
		)
		assert.NoError(t, spec.Validate())
		assert.NoError(t, spec.ValidateColumns([]string{"Genre", "Platform", "Global_Sales"}))
	})

	t.Run("rank filter before window", func(t *testing.T) {
		spec := barSpec(
			Filter{Expr: expr.LE(expr.Field("rank"), expr.Num(10))},
			Window{Ops: []WindowOp{{Op: OpRank, As: "rank"}}, Sort: []SortField{{Field: "Global_Sales", Order: Descending}}},
		)
		err := spec.Validate()
		assert.ErrorIs(t, err, ErrInvalidSpec)
		assert.Contains(t, err.Error(), `"rank"`)
	})

	t.Run("column dropped by aggregate", func(t *testing.T) {
		spec := barSpec(
			Aggregate{Ops: []AggregateOp{{Op: OpSum, Field: "Global_Sales", As: "total"}}, GroupBy: []string{"Platform"}},
		)
		err := spec.Validate()
		assert.ErrorIs(t, err, ErrInvalidSpec)
		assert.Contains(t, err.Error(), `"Genre"`)
	})

	t.Run("unknown column", func(t *testing.T) {
		spec := barSpec(Filter{Expr: expr.Eq(expr.Field("Publisher"), expr.Str("Sony"))})
		assert.NoError(t, spec.Validate())
		assert.ErrorIs(t, spec.ValidateColumns([]string{"Genre"}), ErrInvalidSpec)
	})

	t.Run("empty steps", func(t *testing.T) {
		for _, step := range []Transform{
			Filter{},
			Calculate{Expr: expr.Num(1)},
			Aggregate{},
			Aggregate{Ops: []AggregateOp{{Op: OpSum, As: "x"}}},
			Aggregate{Ops: []AggregateOp{{Op: "median", Field: "a", As: "x"}}},
			Window{Ops: []WindowOp{{Op: OpRank, As: "r"}}},
			Window{Ops: []WindowOp{{Op: OpSum, As: "r"}}},
			Window{Ops: []WindowOp{{Op: OpRowNumber}}},
			Fold{Fields: []string{"a"}},
		} {
			assert.ErrorIs(t, barSpec(step).Validate(), ErrInvalidSpec, "%T", step)
		}
	})

	t.Run("structure", func(t *testing.T) {
		spec := barSpec()
		spec.Data = nil
		assert.ErrorIs(t, spec.Validate(), ErrInvalidSpec)

		spec = barSpec()
		spec.Layer = []Layer{{Mark: &Mark{Type: MarkLine}}}
		assert.ErrorIs(t, spec.Validate(), ErrInvalidSpec)

		spec = barSpec()
		spec.Encoding.Y = &Channel{Field: "Global_Sales"}
		assert.ErrorIs(t, spec.Validate(), ErrInvalidSpec)
	})
}

func TestSpecJSONValidates(t *testing.T) {
	spec := barSpec()
	spec.Schema = ""
	_, err := spec.JSON()
	assert.ErrorIs(t, err, ErrInvalidSpec)

	b, err := barSpec().JSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"$schema":"`+SchemaURL+`"`)
	assert.Contains(t, string(b), `"autosize":{"type":"fit","contains":"padding"}`)
}

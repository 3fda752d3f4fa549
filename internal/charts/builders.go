package charts

import (
	"github.com/junkd0g/vgcharts/internal/expr"
	"github.com/junkd0g/vgcharts/internal/theme"
	"github.com/junkd0g/vgcharts/internal/vegalite"
)

// TopPlatforms is how many platforms the top-N charts keep.
const TopPlatforms = 10

func base(o Options, height int) *vegalite.Spec {
	return &vegalite.Spec{
		Schema:   vegalite.SchemaURL,
		Width:    vegalite.WidthContainer,
		Height:   height,
		Autosize: vegalite.FitPadding(),
		Data:     vegalite.CSV(o.dataURL()),
		Config:   theme.ConfigFor(o.Theme),
	}
}

func sum(field, as string) vegalite.AggregateOp {
	return vegalite.AggregateOp{Op: vegalite.OpSum, Field: field, As: as}
}

// topPlatformSteps ranks platforms by the summed field and keeps the top ten.
// A platform's rank is one plus the number of platforms with a strictly
// greater total, so ties share a rank and push the next platform down.
// platform_first marks one row per platform; the running sum of it counts the
// platforms at or above a total, and subtracting the platforms tied on that
// total leaves the ones strictly above.
func topPlatformSteps(field string) []vegalite.Transform {
	descending := []vegalite.SortField{{Field: "platform_total", Order: vegalite.Descending}}
	return []vegalite.Transform{
		vegalite.JoinAggregate{
			Ops:     []vegalite.AggregateOp{sum(field, "platform_total")},
			GroupBy: []string{ColPlatform},
		},
		vegalite.Window{
			Ops:     []vegalite.WindowOp{{Op: vegalite.OpRowNumber, As: "platform_row"}},
			GroupBy: []string{ColPlatform},
		},
		vegalite.Calculate{
			Expr: expr.Cond(expr.Num(0), expr.Case{When: expr.Eq(expr.Field("platform_row"), expr.Num(1)), Then: expr.Num(1)}),
			As:   "platform_first",
		},
		vegalite.Window{
			Ops:  []vegalite.WindowOp{{Op: vegalite.OpSum, Field: "platform_first", As: "platforms_at_or_above"}},
			Sort: descending,
		},
		vegalite.JoinAggregate{
			Ops:     []vegalite.AggregateOp{sum("platform_first", "platforms_tied")},
			GroupBy: []string{"platform_total"},
		},
		vegalite.Calculate{
			Expr: expr.Add(expr.Sub(expr.Field("platforms_at_or_above"), expr.Field("platforms_tied")), expr.Num(1)),
			As:   "platform_rank",
		},
		vegalite.Filter{Expr: expr.LE(expr.Field("platform_rank"), expr.Num(TopPlatforms))},
	}
}

func pspAction() vegalite.Transform {
	return vegalite.Filter{Expr: expr.And(
		expr.Eq(expr.Field(ColPlatform), expr.Str("PSP")),
		expr.Eq(expr.Field(ColGenre), expr.Str("Action")),
	)}
}

func validYear() vegalite.Transform {
	year := expr.Field(ColYear)
	return vegalite.Filter{Expr: expr.And(expr.IsValid(year), expr.NotEq(year, expr.Null()))}
}

// regionSteps folds the four regional columns and labels them.
func regionSteps() []vegalite.Transform {
	return []vegalite.Transform{
		vegalite.Fold{Fields: RegionColumns, As: [2]string{"region", "sales"}},
		vegalite.Calculate{Expr: RegionLabel("region"), As: "region_label"},
		vegalite.Calculate{Expr: expr.ToNumber(expr.Field("sales")), As: "sales_num"},
	}
}

func companySteps() []vegalite.Transform {
	return []vegalite.Transform{
		vegalite.Calculate{Expr: CompanyGroup(), As: "company_group"},
		vegalite.Calculate{Expr: expr.ToNumber(expr.Field(ColGlobalSales)), As: "sales_num"},
	}
}

func nominal(field string) vegalite.Channel {
	return vegalite.Channel{Field: field, Type: vegalite.Nominal}
}

func sales(field, title string) vegalite.Channel {
	return vegalite.Channel{Field: field, Type: vegalite.Quantitative, Title: title, Format: ".2f"}
}

func genreAxis() *vegalite.Channel {
	return &vegalite.Channel{
		Field: ColGenre,
		Type:  vegalite.Nominal,
		Axis:  &vegalite.Axis{Title: "Genre", LabelAngle: -25},
	}
}

func yearAxis() *vegalite.Channel {
	return &vegalite.Channel{
		Field: ColYear,
		Type:  vegalite.Ordinal,
		Sort:  vegalite.Ascending,
		Axis:  &vegalite.Axis{Title: "Year"},
	}
}

func quantAxis(field, title string) *vegalite.Channel {
	return &vegalite.Channel{Field: field, Type: vegalite.Quantitative, Axis: &vegalite.Axis{Title: title}}
}

func legend(field, title string) *vegalite.Channel {
	return &vegalite.Channel{Field: field, Type: vegalite.Nominal, Legend: &vegalite.Legend{Title: title}}
}

// GenrePlatformSales is a stacked bar of global sales per genre, colored by
// platform, restricted to the ten best-selling platforms. Genres are ordered
// by their total over those platforms.
func GenrePlatformSales(o Options) *vegalite.Spec {
	s := base(o, 360)
	s.Transform = append([]vegalite.Transform{
		vegalite.Aggregate{
			Ops:     []vegalite.AggregateOp{sum(ColGlobalSales, "global_sales")},
			GroupBy: []string{ColGenre, ColPlatform},
		},
	}, topPlatformSteps("global_sales")...)
	s.Transform = append(s.Transform, vegalite.JoinAggregate{
		Ops:     []vegalite.AggregateOp{sum("global_sales", "genre_total")},
		GroupBy: []string{ColGenre},
	})

	x := genreAxis()
	x.Sort = vegalite.SortField{Field: "genre_total", Order: vegalite.Descending}

	s.Mark = &vegalite.Mark{Type: vegalite.MarkBar}
	s.Encoding = &vegalite.Encoding{
		X:     x,
		Y:     quantAxis("global_sales", "Total Global Sales (Millions)"),
		Color: legend(ColPlatform, "Platform (Top 10)"),
		Tooltip: []vegalite.Channel{
			nominal(ColGenre),
			nominal(ColPlatform),
			sales("global_sales", "Global Sales (M)"),
		},
	}
	return s
}

// PSPActionTrend is a line of yearly global sales for PSP Action games.
func PSPActionTrend(o Options) *vegalite.Spec {
	s := base(o, 320)
	s.Transform = []vegalite.Transform{
		pspAction(),
		validYear(),
		vegalite.Aggregate{
			Ops:     []vegalite.AggregateOp{sum(ColGlobalSales, "global_sales")},
			GroupBy: []string{ColYear},
		},
	}
	s.Mark = &vegalite.Mark{Type: vegalite.MarkLine, Point: true}
	s.Encoding = &vegalite.Encoding{
		X: yearAxis(),
		Y: quantAxis("global_sales", "Total Global Sales (M)"),
		Tooltip: []vegalite.Channel{
			{Field: ColYear, Type: vegalite.Ordinal},
			sales("global_sales", "Sales (M)"),
		},
	}
	return s
}

// PSPActionRegions is a donut of PSP Action sales per region. The share is
// computed after aggregation: each region's sum over the sum of all regions.
func PSPActionRegions(o Options) *vegalite.Spec {
	s := base(o, 320)
	s.Transform = append([]vegalite.Transform{pspAction()}, regionSteps()...)
	s.Transform = append(s.Transform,
		vegalite.Aggregate{
			Ops:     []vegalite.AggregateOp{sum("sales_num", "region_sales")},
			GroupBy: []string{"region_label"},
		},
		vegalite.JoinAggregate{Ops: []vegalite.AggregateOp{sum("region_sales", "total_all")}},
		vegalite.Calculate{Expr: expr.Div(expr.Field("region_sales"), expr.Field("total_all")), As: "pct"},
	)
	s.Mark = &vegalite.Mark{Type: vegalite.MarkArc, InnerRadius: 55}
	s.Encoding = &vegalite.Encoding{
		Theta: &vegalite.Channel{Field: "region_sales", Type: vegalite.Quantitative},
		Color: legend("region_label", "Region"),
		Tooltip: []vegalite.Channel{
			{Field: "region_label", Type: vegalite.Nominal, Title: "Region"},
			sales("region_sales", "Sales (M)"),
			{Field: "pct", Type: vegalite.Quantitative, Title: "Share", Format: ".1%"},
		},
	}
	return s
}

// ActionByCompany is a bar of Action game sales per platform owner, summed
// by the encoding rather than a transform.
func ActionByCompany(o Options) *vegalite.Spec {
	s := base(o, 300)
	s.Transform = append([]vegalite.Transform{
		vegalite.Filter{Expr: expr.Eq(expr.Field(ColGenre), expr.Str("Action"))},
	}, companySteps()...)
	s.Mark = &vegalite.Mark{Type: vegalite.MarkBar}
	s.Encoding = &vegalite.Encoding{
		X: &vegalite.Channel{
			Field: "company_group",
			Type:  vegalite.Nominal,
			Sort:  "-y",
			Axis:  &vegalite.Axis{Title: "Company"},
		},
		Y: &vegalite.Channel{
			Aggregate: vegalite.OpSum,
			Field:     "sales_num",
			Type:      vegalite.Quantitative,
			Axis:      &vegalite.Axis{Title: "Total Action Game Global Sales (M)"},
		},
		Color: &vegalite.Channel{Field: "company_group", Type: vegalite.Nominal, HideLegend: true},
		Tooltip: []vegalite.Channel{
			{Field: "company_group", Type: vegalite.Nominal, Title: "Company"},
			{Aggregate: vegalite.OpSum, Field: "sales_num", Type: vegalite.Quantitative, Title: "Sales (M)", Format: ".2f"},
		},
	}
	return s
}

// AverageSalesPerGame is a grouped bar of mean sales per title by genre and
// platform, for the ten best-selling platforms.
func AverageSalesPerGame(o Options) *vegalite.Spec {
	s := base(o, 360)
	s.Transform = append(topPlatformSteps(ColGlobalSales), vegalite.Aggregate{
		Ops:     []vegalite.AggregateOp{{Op: vegalite.OpMean, Field: ColGlobalSales, As: "avg_sales"}},
		GroupBy: []string{ColGenre, ColPlatform},
	})
	s.Mark = &vegalite.Mark{Type: vegalite.MarkBar}
	s.Encoding = &vegalite.Encoding{
		X:     genreAxis(),
		Y:     quantAxis("avg_sales", "Avg Sales per Game (M)"),
		Color: legend(ColPlatform, "Platform (Top 10)"),
		Tooltip: []vegalite.Channel{
			nominal(ColGenre),
			nominal(ColPlatform),
			sales("avg_sales", "Avg Sales (M)"),
		},
	}
	return s
}

// PSPActionReleases layers yearly sales and release counts for PSP Action
// games on independent y scales.
func PSPActionReleases(o Options) *vegalite.Spec {
	s := base(o, 320)
	s.Transform = []vegalite.Transform{
		pspAction(),
		validYear(),
		vegalite.Aggregate{
			Ops: []vegalite.AggregateOp{
				sum(ColGlobalSales, "total_sales"),
				{Op: vegalite.OpCount, As: "release_count"},
			},
			GroupBy: []string{ColYear},
		},
	}
	s.Layer = []vegalite.Layer{
		{
			Mark: &vegalite.Mark{Type: vegalite.MarkLine, Point: true},
			Encoding: &vegalite.Encoding{
				X: yearAxis(),
				Y: quantAxis("total_sales", "Total Sales (M)"),
				Tooltip: []vegalite.Channel{
					{Field: ColYear, Type: vegalite.Ordinal},
					sales("total_sales", "Sales (M)"),
					{Field: "release_count", Type: vegalite.Quantitative, Title: "Releases"},
				},
			},
		},
		{
			Mark: &vegalite.Mark{Type: vegalite.MarkLine, Point: true},
			Encoding: &vegalite.Encoding{
				X: &vegalite.Channel{Field: ColYear, Type: vegalite.Ordinal},
				Y: quantAxis("release_count", "Releases"),
			},
		},
	}
	s.Resolve = &vegalite.Resolve{Scale: map[string]string{"y": "independent"}}
	return s
}

// PSPRegionalShareByGenre is a normalized stacked bar of PSP sales per genre
// split by region.
func PSPRegionalShareByGenre(o Options) *vegalite.Spec {
	s := base(o, 360)
	s.Transform = append([]vegalite.Transform{
		vegalite.Filter{Expr: expr.Eq(expr.Field(ColPlatform), expr.Str("PSP"))},
	}, regionSteps()...)
	s.Transform = append(s.Transform, vegalite.Aggregate{
		Ops:     []vegalite.AggregateOp{sum("sales_num", "region_sales")},
		GroupBy: []string{ColGenre, "region_label"},
	})

	y := quantAxis("region_sales", "Proportion of PSP Sales")
	y.Stack = "normalize"

	s.Mark = &vegalite.Mark{Type: vegalite.MarkBar}
	s.Encoding = &vegalite.Encoding{
		X:     genreAxis(),
		Y:     y,
		Color: legend("region_label", "Region"),
		Tooltip: []vegalite.Channel{
			nominal(ColGenre),
			nominal("region_label"),
			sales("region_sales", "Sales (M)"),
		},
	}
	return s
}

// CompanySalesByGenre is a grouped bar of global sales per genre and owner.
func CompanySalesByGenre(o Options) *vegalite.Spec {
	s := base(o, 380)
	s.Transform = append(companySteps(), vegalite.Aggregate{
		Ops:     []vegalite.AggregateOp{sum("sales_num", "total_sales")},
		GroupBy: []string{ColGenre, "company_group"},
	})
	s.Mark = &vegalite.Mark{Type: vegalite.MarkBar}
	s.Encoding = &vegalite.Encoding{
		X:     genreAxis(),
		Y:     quantAxis("total_sales", "Total Global Sales (M)"),
		Color: legend("company_group", "Company"),
		Tooltip: []vegalite.Channel{
			nominal(ColGenre),
			nominal("company_group"),
			sales("total_sales", "Sales (M)"),
		},
	}
	return s
}

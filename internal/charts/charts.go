// Package charts assembles the eight video game sales chart specifications.
package charts

import (
	"errors"
	"fmt"

	"github.com/junkd0g/vgcharts/internal/expr"
	"github.com/junkd0g/vgcharts/internal/theme"
	"github.com/junkd0g/vgcharts/internal/vegalite"
)

// DefaultDataURL is where the page expects the dataset.
const DefaultDataURL = "dataset/videogames_wide.csv"

// Dataset columns.
const (
	ColPlatform    = "Platform"
	ColGenre       = "Genre"
	ColYear        = "Year"
	ColGlobalSales = "Global_Sales"
	ColNASales     = "NA_Sales"
	ColEUSales     = "EU_Sales"
	ColJPSales     = "JP_Sales"
	ColOtherSales  = "Other_Sales"
)

// Columns lists every column the charts read.
var Columns = []string{
	ColPlatform, ColGenre, ColYear, ColGlobalSales,
	ColNASales, ColEUSales, ColJPSales, ColOtherSales,
}

// RegionColumns are the per-region sales columns, in display order.
var RegionColumns = []string{ColNASales, ColEUSales, ColJPSales, ColOtherSales}

// Mount ids, in render order.
const (
	V1 = "vl_v1"
	V2 = "vl_v2"
	V3 = "vl_v3"
	V4 = "vl_v4"
	F1 = "vl_f1"
	F2 = "vl_f2"
	F3 = "vl_f3"
	F4 = "vl_f4"
)

// ErrUnknownChart is returned by Lookup.
var ErrUnknownChart = errors.New("unknown chart")

// Options are the inputs every builder reads.
type Options struct {
	Theme   theme.Theme
	DataURL string
}

func (o Options) dataURL() string {
	if o.DataURL == "" {
		return DefaultDataURL
	}
	return o.DataURL
}

// Builder produces a fresh spec on every call.
type Builder func(Options) *vegalite.Spec

// Chart is one mount point and the builder for its spec.
type Chart struct {
	ID          string
	Title       string
	Description string
	Build       Builder
}

var catalog = []Chart{
	{V1, "Global Sales by Genre and Platform", "Stacked global sales per genre for the ten best-selling platforms.", GenrePlatformSales},
	{V2, "PSP Action Sales Over Time", "Yearly global sales of Action games on the PSP.", PSPActionTrend},
	{V3, "Regional Share of PSP Action Sales", "How PSP Action sales split across regions.", PSPActionRegions},
	{V4, "Company Dominance in Action Games", "Action game sales by platform owner.", ActionByCompany},
	{F1, "Average Sales per Game by Genre and Platform", "Mean global sales per title for the ten best-selling platforms.", AverageSalesPerGame},
	{F2, "PSP Action: Sales vs Releases", "Yearly sales against the number of releases, on independent axes.", PSPActionReleases},
	{F3, "PSP Regional Share by Genre", "Regional proportions of PSP sales within each genre.", PSPRegionalShareByGenre},
	{F4, "Company Sales Across Genres", "Global sales per genre, split by platform owner.", CompanySalesByGenre},
}

// All returns the charts in render order.
func All() []Chart {
	return append([]Chart(nil), catalog...)
}

// IDs returns the mount ids in render order.
func IDs() []string {
	ids := make([]string, len(catalog))
	for i, c := range catalog {
		ids[i] = c.ID
	}
	return ids
}

// Lookup finds a chart by mount id.
func Lookup(id string) (Chart, error) {
	for _, c := range catalog {
		if c.ID == id {
			return c, nil
		}
	}
	return Chart{}, fmt.Errorf("%w: %q", ErrUnknownChart, id)
}

// Platform owners.
var (
	sonyPlatforms      = []string{"PS", "PS2", "PS3", "PS4", "PSP", "PSV"}
	nintendoPlatforms  = []string{"NES", "SNES", "N64", "GC", "Wii", "WiiU", "GB", "GBA", "DS", "3DS"}
	microsoftPlatforms = []string{"XB", "X360", "XOne"}
)

// CompanyGroup classifies datum.Platform into Sony, Nintendo, Microsoft or
// Other.
func CompanyGroup() expr.Expr {
	platform := expr.Field(ColPlatform)
	return expr.Cond(expr.Str("Other"),
		expr.Case{When: expr.In(platform, sonyPlatforms...), Then: expr.Str("Sony")},
		expr.Case{When: expr.In(platform, nintendoPlatforms...), Then: expr.Str("Nintendo")},
		expr.Case{When: expr.In(platform, microsoftPlatforms...), Then: expr.Str("Microsoft")},
	)
}

// Company returns the owner of a platform code.
func Company(platform string) string {
	v, _ := CompanyGroup().Eval(expr.Row{ColPlatform: platform}).(string)
	return v
}

// RegionLabel maps the folded region column name to a display label.
func RegionLabel(field string) expr.Expr {
	region := expr.Field(field)
	return expr.Cond(expr.Str("Other"),
		expr.Case{When: expr.Eq(region, expr.Str(ColNASales)), Then: expr.Str("North America")},
		expr.Case{When: expr.Eq(region, expr.Str(ColEUSales)), Then: expr.Str("Europe")},
		expr.Case{When: expr.Eq(region, expr.Str(ColJPSales)), Then: expr.Str("Japan")},
	)
}

// Region returns the display label for a region column name.
func Region(column string) string {
	v, _ := RegionLabel("region").Eval(expr.Row{"region": column}).(string)
	return v
}

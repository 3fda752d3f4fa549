package diagram

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkd0g/vgcharts/internal/charts"
	"github.com/junkd0g/vgcharts/internal/vegalite"
)

func TestPipelineDOT(t *testing.T) {
	spec := charts.GenrePlatformSales(charts.Options{})
	dot := PipelineDOT(charts.V1, spec)

	assert.True(t, strings.HasPrefix(dot, "digraph vl_v1 {"))
	assert.Contains(t, dot, `label="data\n`+charts.DefaultDataURL+`"`)
	assert.Contains(t, dot, "source -> step0;")
	for i := 1; i < len(spec.Transform); i++ {
		assert.Contains(t, dot, "step"+strconv.Itoa(i-1)+" -> step"+strconv.Itoa(i)+";")
	}
	assert.Contains(t, dot, "step"+strconv.Itoa(len(spec.Transform)-1)+" -> mark0;")
	assert.Contains(t, dot, `label="mark: bar"`)
	assert.Contains(t, dot, ColorScheme[vegalite.StepWindow])
	assert.Contains(t, dot, `row_number as platform_row\nby Platform"`)
	assert.Contains(t, dot, `sum(platform_first) as platforms_at_or_above\nsort`)
}

func TestPipelineDOTLayers(t *testing.T) {
	dot := PipelineDOT(charts.F2, charts.PSPActionReleases(charts.Options{}))
	assert.Contains(t, dot, "mark0")
	assert.Contains(t, dot, "mark1")
	assert.Contains(t, dot, `layer 2\n`)
}

func TestPipelineDOTQuotesExpressions(t *testing.T) {
	for _, c := range charts.All() {
		dot := PipelineDOT(c.ID, c.Build(charts.Options{}))
		// every label attribute is closed on the line it opens
		for _, line := range strings.Split(dot, "\n") {
			if strings.Contains(line, "label=\"") {
				assert.True(t, strings.HasSuffix(line, "\"];") || strings.HasSuffix(line, "\";"), line)
			}
		}
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"v3.svg", "v3.png"} {
		path := filepath.Join(dir, "out", name)
		require.NoError(t, Generate(charts.V3, charts.PSPActionRegions(charts.Options{}), path))

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotEmpty(t, b)
		if strings.HasSuffix(name, ".svg") {
			assert.Contains(t, string(b), "<svg")
		} else {
			assert.Equal(t, "\x89PNG", string(b[:4]))
		}
	}
}

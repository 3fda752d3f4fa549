package diagram

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/junkd0g/vgcharts/internal/vegalite"
)

// ColorScheme defines colors for the pipeline stages.
var ColorScheme = map[vegalite.StepKind]string{
	vegalite.StepFilter:        "#E74C3C", // Red - drops rows
	vegalite.StepCalculate:     "#50C878", // Green - derives a field
	vegalite.StepAggregate:     "#FFB347", // Orange - collapses rows
	vegalite.StepJoinAggregate: "#F39C12",
	vegalite.StepWindow:        "#9B59B6", // Purple - ranks rows
	vegalite.StepFold:          "#1ABC9C",
}

const (
	sourceColor = "#4A90D9"
	markColor   = "#34495E"
)

// Generate renders the pipeline of spec and saves it to the output path.
// The format follows the extension: .svg for SVG, PNG otherwise.
func Generate(id string, spec *vegalite.Spec, outputPath string) error {
	ctx := context.Background()

	g, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer g.Close()

	graph, err := graphviz.ParseBytes([]byte(PipelineDOT(id, spec)))
	if err != nil {
		return fmt.Errorf("failed to parse DOT: %w", err)
	}
	defer graph.Close()

	format := graphviz.PNG
	if strings.HasSuffix(outputPath, ".svg") {
		format = graphviz.SVG
	}

	var buf bytes.Buffer
	if err := g.Render(ctx, graph, format, &buf); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}

	if err := writeFileBytes(outputPath, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

// PipelineDOT draws the data source, each transform step in order, and the
// mark (or one node per layer) as a top-to-bottom DOT graph.
func PipelineDOT(id string, spec *vegalite.Spec) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("digraph %s {\n", sanitizeName(id)))
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString(fmt.Sprintf("  label=%s;\n", quote(id)))
	sb.WriteString("  labelloc=t;\n")
	sb.WriteString("  fontsize=20;\n")
	sb.WriteString("  fontname=\"Helvetica-Bold\";\n")
	sb.WriteString("  pad=0.4;\n")
	sb.WriteString("  nodesep=0.6;\n")
	sb.WriteString("  ranksep=0.5;\n\n")

	sb.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12, margin=\"0.25,0.12\", penwidth=2, fontcolor=\"white\"];\n")
	sb.WriteString("  edge [penwidth=2, color=\"#555555\"];\n\n")

	source := "(no data)"
	if spec.Data != nil {
		source = spec.Data.URL
	}
	writeNode(&sb, "source", "data\\n"+escape(source), sourceColor)

	prev := "source"
	for i, step := range spec.Transform {
		name := fmt.Sprintf("step%d", i)
		writeNode(&sb, name, stepLabel(step), ColorScheme[step.Kind()])
		sb.WriteString(fmt.Sprintf("  %s -> %s;\n", prev, name))
		prev = name
	}

	marks := spec.Marks()
	for i, m := range marks {
		name := fmt.Sprintf("mark%d", i)
		label := "mark: " + m.Type
		if len(marks) > 1 {
			label = fmt.Sprintf("layer %d\\n%s", i+1, label)
		}
		writeNode(&sb, name, label, markColor)
		sb.WriteString(fmt.Sprintf("  %s -> %s;\n", prev, name))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func writeNode(sb *strings.Builder, name, label, color string) {
	sb.WriteString(fmt.Sprintf("  %s [fillcolor=\"%s\", label=\"%s\"];\n", name, color, label))
}

// stepLabel is the node text for a transform: its kind and a short summary.
func stepLabel(t vegalite.Transform) string {
	var detail string
	switch s := t.(type) {
	case vegalite.Filter:
		detail = s.Expr.String()
	case vegalite.Calculate:
		detail = s.As + " = " + s.Expr.String()
	case vegalite.Aggregate:
		detail = opsLabel(s.Ops) + groupLabel(s.GroupBy)
	case vegalite.JoinAggregate:
		detail = opsLabel(s.Ops) + groupLabel(s.GroupBy)
	case vegalite.Window:
		ops := make([]string, len(s.Ops))
		for i, op := range s.Ops {
			if op.Field != "" {
				ops[i] = fmt.Sprintf("%s(%s) as %s", op.Op, op.Field, op.As)
				continue
			}
			ops[i] = op.Op + " as " + op.As
		}
		detail = strings.Join(ops, ", ") + groupLabel(s.GroupBy)
		if len(s.Sort) > 0 {
			sorts := make([]string, len(s.Sort))
			for i, f := range s.Sort {
				sorts[i] = f.Field + " " + f.Order
			}
			detail += "\\nsort " + strings.Join(sorts, ", ")
		}
	case vegalite.Fold:
		detail = strings.Join(s.Fields, ", ") + "\\nas " + s.As[0] + ", " + s.As[1]
	}
	return string(t.Kind()) + "\\n" + escape(truncate(detail, 60))
}

func opsLabel(ops []vegalite.AggregateOp) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		if op.Field == "" {
			parts[i] = fmt.Sprintf("%s as %s", op.Op, op.As)
			continue
		}
		parts[i] = fmt.Sprintf("%s(%s) as %s", op.Op, op.Field, op.As)
	}
	return strings.Join(parts, ", ")
}

func groupLabel(by []string) string {
	if len(by) == 0 {
		return ""
	}
	return "\\nby " + strings.Join(by, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// escape makes s safe inside a double-quoted DOT string.
func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func quote(s string) string {
	return `"` + escape(s) + `"`
}

func sanitizeName(name string) string {
	s := strings.ReplaceAll(name, "-", "_")
	s = strings.ReplaceAll(s, ".", "_")
	return s
}

func writeFileBytes(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

package render

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
)

// MaxDimension bounds the width and height a request may ask for.
const MaxDimension = 4096

// maxTicks is the most x-axis labels drawn before labels are thinned out.
const maxTicks = 12

// GoChartRenderer renders charts to PNG with go-chart.
type GoChartRenderer struct {
	width  int
	height int
}

// NewGoChartRenderer creates a renderer whose canvas defaults to width x height.
func NewGoChartRenderer(width, height int) *GoChartRenderer {
	return &GoChartRenderer{width: width, height: height}
}

// SupportedTypes lists the chart types GoChartRenderer draws.
var SupportedTypes = []string{"line", "area", "column", "bar", "pie", "scatter"}

// Supported reports whether chartType is one of SupportedTypes.
func Supported(chartType string) bool {
	for _, t := range SupportedTypes {
		if t == chartType {
			return true
		}
	}
	return false
}

// Render draws spec and returns the PNG bytes
func (r *GoChartRenderer) Render(ctx context.Context, spec Spec) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.Type == "" {
		return nil, fmt.Errorf("chart type is required")
	}

	opts, err := decodeLayout(spec.Options)
	if err != nil {
		return nil, err
	}
	width, height, err := r.size(opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch spec.Type {
	case "line":
		err = r.renderSeries(&buf, spec, opts, width, height, false)
	case "area":
		err = r.renderSeries(&buf, spec, opts, width, height, true)
	case "column", "bar":
		err = r.renderBars(&buf, spec, opts, width, height)
	case "pie":
		err = r.renderPie(&buf, spec, opts, width, height)
	case "scatter":
		err = r.renderScatter(&buf, spec, opts, width, height)
	default:
		return nil, fmt.Errorf("unsupported chart type %q", spec.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s chart: %w", spec.Type, err)
	}
	return buf.Bytes(), nil
}

func (r *GoChartRenderer) size(opts layout) (int, int, error) {
	width, height := r.width, r.height
	if opts.Width != 0 {
		width = opts.Width
	}
	if opts.Height != 0 {
		height = opts.Height
	}
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return 0, 0, fmt.Errorf("invalid chart size %dx%d: each side must be between 1 and %d", width, height, MaxDimension)
	}
	return width, height, nil
}

func (r *GoChartRenderer) renderSeries(buf *bytes.Buffer, spec Spec, opts layout, width, height int, fill bool) error {
	points, err := decodePoints[timePoint](spec.Data)
	if err != nil {
		return err
	}
	labels, groups, err := groupTimePoints(points)
	if err != nil {
		return err
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20},
		},
		XAxis: chart.XAxis{
			Name:  opts.AxisXTitle,
			Ticks: padTicks(ticks(labels)),
		},
		YAxis: chart.YAxis{
			Name:  opts.AxisYTitle,
			Range: padRange(allValues(groups)),
		},
	}
	for i, g := range groups {
		s := chart.ContinuousSeries{
			Name:    g.name,
			XValues: g.xs,
			YValues: g.ys,
		}
		if fill {
			s.Style = chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				FillColor:   chart.GetDefaultColor(i).WithAlpha(64),
			}
		}
		graph.Series = append(graph.Series, s)
	}
	if len(groups) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	return graph.Render(chart.PNG, buf)
}

func (r *GoChartRenderer) renderBars(buf *bytes.Buffer, spec Spec, opts layout, width, height int) error {
	points, err := decodePoints[categoryPoint](spec.Data)
	if err != nil {
		return err
	}
	categories, totals, err := sumByCategory(points)
	if err != nil {
		return err
	}

	bars := make([]chart.Value, len(categories))
	for i := range categories {
		bars[i] = chart.Value{Label: categories[i], Value: totals[i]}
	}

	graph := chart.BarChart{
		Title:  opts.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		BarWidth: barWidth(width, len(bars)),
		Bars:     bars,
		YAxis: chart.YAxis{
			Range: barRange(totals),
		},
	}
	return graph.Render(chart.PNG, buf)
}

func (r *GoChartRenderer) renderPie(buf *bytes.Buffer, spec Spec, opts layout, width, height int) error {
	points, err := decodePoints[categoryPoint](spec.Data)
	if err != nil {
		return err
	}
	categories, totals, err := sumByCategory(points)
	if err != nil {
		return err
	}

	values := make([]chart.Value, len(categories))
	for i := range categories {
		values[i] = chart.Value{Label: categories[i], Value: totals[i]}
	}

	graph := chart.PieChart{
		Title:  opts.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
	return graph.Render(chart.PNG, buf)
}

func (r *GoChartRenderer) renderScatter(buf *bytes.Buffer, spec Spec, opts layout, width, height int) error {
	points, err := decodePoints[xyPoint](spec.Data)
	if err != nil {
		return err
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		if p.X == nil || p.Y == nil {
			return fmt.Errorf("invalid chart data: entry %d needs x and y", i)
		}
		xs[i], ys[i] = *p.X, *p.Y
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20},
		},
		XAxis: chart.XAxis{Name: opts.AxisXTitle, Range: padRange(xs)},
		YAxis: chart.YAxis{Name: opts.AxisYTitle, Range: padRange(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    5,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return graph.Render(chart.PNG, buf)
}

// ticks labels x positions 0..n-1, keeping at most maxTicks of them.
func ticks(labels []string) []chart.Tick {
	step := 1
	if len(labels) > maxTicks {
		step = (len(labels) + maxTicks - 1) / maxTicks
	}
	var out []chart.Tick
	for i := 0; i < len(labels); i += step {
		out = append(out, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	return out
}

// padTicks adds blank ticks on both sides of a lone tick. go-chart derives
// the x range from the ticks and rejects a zero-width range.
func padTicks(ts []chart.Tick) []chart.Tick {
	if len(ts) != 1 {
		return ts
	}
	v := ts[0].Value
	return []chart.Tick{{Value: v - 1}, ts[0], {Value: v + 1}}
}

// padRange returns a range of value±1 when every value is the same, and nil
// otherwise so go-chart fits the axis to the data.
func padRange(values []float64) chart.Range {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo != hi {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

// barRange spans the bar totals and always includes zero.
func barRange(totals []float64) chart.Range {
	lo, hi := 0.0, 0.0
	for _, v := range totals {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo == hi {
		hi = 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func allValues(groups []series) []float64 {
	var out []float64
	for _, g := range groups {
		out = append(out, g.ys...)
	}
	return out
}

func barWidth(width, bars int) int {
	if bars == 0 {
		return 0
	}
	w := (width - 100) / (bars * 2)
	switch {
	case w < 8:
		return 8
	case w > 60:
		return 60
	default:
		return w
	}
}

package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// layout holds the presentation options shared by every chart type.
type layout struct {
	Title      string `json:"title"`
	AxisXTitle string `json:"axisXTitle"`
	AxisYTitle string `json:"axisYTitle"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// timePoint is one entry of line and area data.
type timePoint struct {
	Time  label    `json:"time"`
	Value *float64 `json:"value"`
	Group string   `json:"group"`
}

// categoryPoint is one entry of column, bar and pie data.
type categoryPoint struct {
	Category label    `json:"category"`
	Value    *float64 `json:"value"`
	Group    string   `json:"group"`
}

// xyPoint is one entry of scatter data.
type xyPoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// label accepts a JSON string or number and keeps its text.
type label string

func (l *label) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = label(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("label must be a string or number, got %s", b)
	}
	*l = label(b)
	return nil
}

func decodeLayout(options map[string]json.RawMessage) (layout, error) {
	var l layout
	if len(options) == 0 {
		return l, nil
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return l, err
	}
	if err := json.Unmarshal(raw, &l); err != nil {
		return l, fmt.Errorf("invalid chart options: %w", err)
	}
	return l, nil
}

func decodePoints[T any](data json.RawMessage) ([]T, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("chart data is required")
	}
	var points []T
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("invalid chart data: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("chart data is empty")
	}
	return points, nil
}

// series is one named run of y values over x positions.
type series struct {
	name string
	xs   []float64
	ys   []float64
}

// groupTimePoints places points on a shared x axis in order of first
// appearance and splits them by group, also in order of first appearance.
func groupTimePoints(points []timePoint) ([]string, []series, error) {
	var labels []string
	xIndex := make(map[label]int)
	groupIndex := make(map[string]int)
	var out []series

	for i, p := range points {
		if p.Value == nil {
			return nil, nil, fmt.Errorf("invalid chart data: entry %d has no value", i)
		}
		x, ok := xIndex[p.Time]
		if !ok {
			x = len(labels)
			xIndex[p.Time] = x
			labels = append(labels, string(p.Time))
		}
		g, ok := groupIndex[p.Group]
		if !ok {
			g = len(out)
			groupIndex[p.Group] = g
			out = append(out, series{name: p.Group})
		}
		out[g].xs = append(out[g].xs, float64(x))
		out[g].ys = append(out[g].ys, *p.Value)
	}
	return labels, out, nil
}

// sumByCategory totals values per category, keeping first-appearance order.
func sumByCategory(points []categoryPoint) ([]string, []float64, error) {
	var categories []string
	var totals []float64
	index := make(map[label]int)

	for i, p := range points {
		if p.Value == nil {
			return nil, nil, fmt.Errorf("invalid chart data: entry %d has no value", i)
		}
		c, ok := index[p.Category]
		if !ok {
			c = len(categories)
			index[p.Category] = c
			categories = append(categories, string(p.Category))
			totals = append(totals, 0)
		}
		totals[c] += *p.Value
	}
	return categories, totals, nil
}

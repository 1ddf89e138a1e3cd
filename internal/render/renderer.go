// Package render turns chart specifications into PNG images.
package render

import (
	"context"
	"encoding/json"
)

// Renderer converts a chart specification into an encoded image.
type Renderer interface {
	Render(ctx context.Context, spec Spec) ([]byte, error)
}

// Spec describes one chart. Options holds every field of the request as
// received, including type and data; layout fields such as title, width
// and height are read from it by the renderer.
type Spec struct {
	Type    string
	Data    json.RawMessage
	Options map[string]json.RawMessage
}

// SpecFromOptions builds a Spec from a decoded request body. A non-string
// type leaves Type empty, which renderers reject.
func SpecFromOptions(options map[string]json.RawMessage) Spec {
	spec := Spec{Options: options}
	if raw, ok := options["type"]; ok {
		var chartType string
		if err := json.Unmarshal(raw, &chartType); err == nil {
			spec.Type = chartType
		}
	}
	spec.Data = options["data"]
	return spec
}

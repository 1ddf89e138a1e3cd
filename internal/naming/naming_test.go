package naming

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"report.html", "text/html"},
		{"site.css", "text/css"},
		{"app.js", "application/javascript"},
		{"data.json", "application/json"},
		{"INDEX.HTML", "text/html"},
		{"data.bin", "text/plain"},
		{"notes.txt", "text/plain"},
		{"page.htm", "text/plain"},
		{"archive.json.gz", "text/plain"},
		{"noextension", "text/plain"},
		{"", "text/plain"},
	}

	detector := NewSuffixContentTypeDetector()
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.DetectFromFilename(tt.filename))
		})
	}
}

func TestChartFilename(t *testing.T) {
	now := time.UnixMilli(1723197600123)
	assert.Equal(t, "chart-1723197600123.jpg", ChartFilename(now))
}

func TestUUIDGenerator(t *testing.T) {
	gen := NewUUIDGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestPrefixedFilename(t *testing.T) {
	name := PrefixedFilename("0b5c1a3e-8d8e-4f57-9a0e-5b7a1f3c2d10", "report.html")
	assert.Equal(t, "0b5c1a3e-8d8e-4f57-9a0e-5b7a1f3c2d10-report.html", name)
	assert.True(t, strings.HasSuffix(name, "-report.html"))
}

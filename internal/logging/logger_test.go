package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Options{Level: tt.level, Output: &buf})

			level.Debug(logger).Log("msg", "debug-line")
			level.Info(logger).Log("msg", "info-line")
			level.Warn(logger).Log("msg", "warn-line")
			level.Error(logger).Log("msg", "error-line")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug-line"))
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "info-line"))
			assert.Equal(t, tt.wantWarn, strings.Contains(out, "warn-line"))
			assert.True(t, strings.Contains(out, "error-line"))
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(Options{Format: "json", Output: &buf}), "httpapi")

	level.Info(logger).Log("msg", "hello", "status", 200)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "httpapi", record["component"])
	assert.Equal(t, "info", record["level"])
	assert.Contains(t, record, "ts")
	assert.Contains(t, record, "caller")
}

func TestNew_LogfmtFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Output: &buf})

	level.Info(logger).Log("msg", "started", "port", "3000")

	out := buf.String()
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "msg=started")
	assert.Contains(t, out, "port=3000")
}

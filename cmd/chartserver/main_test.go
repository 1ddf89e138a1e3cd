package main

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weberyanglalala/gpt-chart-express-server/internal/config"
	"github.com/weberyanglalala/gpt-chart-express-server/internal/logging"
)

var allEnv = []string{
	config.EnvPort, config.EnvBucketName, config.EnvEndpointURL, config.EnvAccessKeyID,
	config.EnvSecretAccessKey, config.EnvPublicURL, config.EnvRegion, config.EnvChartValidation,
	config.EnvChartWidth, config.EnvChartHeight, config.EnvLogLevel, config.EnvLogFormat,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range allEnv {
		t.Setenv(name, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvPort, "4000")

	cfg, err := loadConfig([]string{missingEnvFile(t)}, &serveOptions{port: "8081", validation: "PASSTHROUGH"})
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, config.ValidationPassthrough, cfg.ChartValidation)

	_, err = loadConfig([]string{missingEnvFile(t)}, &serveOptions{validation: "loose"})
	assert.Error(t, err)
}

func TestNewServer_WithoutStorage(t *testing.T) {
	clearEnv(t)
	cfg, err := loadConfig([]string{missingEnvFile(t)}, nil)
	require.NoError(t, err)

	var logs bytes.Buffer
	srv, err := newServer(cfg, logging.New(logging.Options{Output: &logs}), prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, ":3000", srv.Addr)
	assert.Contains(t, logs.String(), "storage settings incomplete")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{"text_content":"x","filename":"a.txt"}`))
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), config.MissingStorageMessage)

	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewServer_WithStorage(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvBucketName, "charts")
	t.Setenv(config.EnvEndpointURL, "https://account.r2.cloudflarestorage.com")
	t.Setenv(config.EnvAccessKeyID, "key")
	t.Setenv(config.EnvSecretAccessKey, "secret")
	t.Setenv(config.EnvPublicURL, "https://cdn.example.com")

	cfg, err := loadConfig([]string{missingEnvFile(t)}, nil)
	require.NoError(t, err)

	var logs bytes.Buffer
	_, err = newServer(cfg, logging.New(logging.Options{Output: &logs}), prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "storage initialized")

	cfg.Storage.EndpointURL = "ftp://example.com"
	_, err = newServer(cfg, logging.New(logging.Options{Output: &logs}), prometheus.NewRegistry())
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	specPath := filepath.Join(dir, "spec.json")
	outPath := filepath.Join(dir, "chart.png")
	require.NoError(t, os.WriteFile(specPath, []byte(`{"type":"column","data":[{"category":"a","value":3},{"category":"b","value":5}]}`), 0o644))

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"render", "--env-file", missingEnvFile(t), "--spec", specPath, "--out", outPath})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "wrote "+outPath)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Width)
	assert.Equal(t, 600, img.Height)
}

func TestRenderCommand_Stdin(t *testing.T) {
	clearEnv(t)
	outPath := filepath.Join(t.TempDir(), "chart.png")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(`{"type":"pie","data":[{"category":"a","value":1}],"width":320,"height":240}`))
	cmd.SetArgs([]string{"render", "--env-file", missingEnvFile(t), "--out", outPath})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(outPath)
	assert.NoError(t, err)
}

func TestRenderCommand_Errors(t *testing.T) {
	clearEnv(t)
	for name, input := range map[string]string{
		"malformed":   `{`,
		"unsupported": `{"type":"radar","data":[1]}`,
		"no data":     `{"type":"line"}`,
	} {
		t.Run(name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetIn(strings.NewReader(input))
			cmd.SetArgs([]string{"render", "--env-file", missingEnvFile(t), "--out", filepath.Join(t.TempDir(), "x.png")})
			assert.Error(t, cmd.Execute())
		})
	}
}

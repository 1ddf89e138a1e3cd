package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/weberyanglalala/gpt-chart-express-server/internal/config"
	"github.com/weberyanglalala/gpt-chart-express-server/internal/metrics"
	"github.com/weberyanglalala/gpt-chart-express-server/internal/naming"
	"github.com/weberyanglalala/gpt-chart-express-server/internal/render"
	"github.com/weberyanglalala/gpt-chart-express-server/internal/storage"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

const chartContentType = "image/png"

// HTTPHandler handles HTTP requests and responses
type HTTPHandler struct {
	config              *config.Config
	renderer            render.Renderer
	store               storage.ObjectStore
	idGenerator         naming.IDGenerator
	contentTypeDetector naming.ContentTypeDetector
	responseFormatter   ResponseFormatter
	clock               naming.Clock
	logger              log.Logger
	metrics             *metrics.Metrics
}

// Option customises an HTTPHandler
type Option func(*HTTPHandler)

// WithIDGenerator sets the generator used to prefix uploaded filenames.
func WithIDGenerator(g naming.IDGenerator) Option {
	return func(h *HTTPHandler) { h.idGenerator = g }
}

// WithClock sets the time source used to name charts.
func WithClock(c naming.Clock) Option {
	return func(h *HTTPHandler) { h.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(h *HTTPHandler) { h.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *HTTPHandler) { h.metrics = m }
}

// NewHTTPHandler creates a new HTTP handler with dependencies. store may be
// nil when the storage settings are incomplete; requests then fail with the
// configuration error before the store is used.
func NewHTTPHandler(cfg *config.Config, renderer render.Renderer, store storage.ObjectStore, opts ...Option) *HTTPHandler {
	h := &HTTPHandler{
		config:              cfg,
		renderer:            renderer,
		store:               store,
		idGenerator:         naming.NewUUIDGenerator(),
		contentTypeDetector: naming.NewSuffixContentTypeDetector(),
		responseFormatter:   NewDefaultResponseFormatter(),
		clock:               time.Now,
		logger:              log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ChartHandler renders the chart in the request body, uploads the image and
// responds with its public URL.
func (h *HTTPHandler) ChartHandler(w http.ResponseWriter, r *http.Request) {
	var options map[string]json.RawMessage
	if err := decodeBody(w, r, &options); err != nil {
		h.fail(w, "chart", err)
		return
	}

	spec, err := h.chartSpec(options)
	if err != nil {
		h.fail(w, "chart", err)
		return
	}

	image, err := h.render(r.Context(), spec)
	if err != nil {
		h.fail(w, "chart", err)
		return
	}

	filename := naming.ChartFilename(h.clock())

	// Storage settings are checked only once the image exists.
	if err := h.config.Storage.Check(); err != nil {
		h.fail(w, "chart", err)
		return
	}

	key, err := h.upload(r.Context(), "chart", filename, image, chartContentType)
	if err != nil {
		h.fail(w, "chart", err)
		return
	}

	url := h.config.Storage.ObjectURL(key)
	level.Info(h.logger).Log("msg", "chart uploaded", "type", spec.Type, "url", url)
	writeJSON(w, http.StatusOK, h.responseFormatter.FormatChartResponse(url))
}

// UploadRequest is the body of the upload endpoint.
type UploadRequest struct {
	TextContent string `json:"text_content"`
	Filename    string `json:"filename"`
}

// UploadHandler stores text content under a UUID-prefixed key and responds
// with its public URL.
func (h *HTTPHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, "upload", err)
		return
	}
	if req.TextContent == "" || req.Filename == "" {
		h.fail(w, "upload", &RequestError{Message: MsgMissingUploadFields})
		return
	}

	if err := h.config.Storage.Check(); err != nil {
		h.fail(w, "upload", err)
		return
	}

	filename := naming.PrefixedFilename(h.idGenerator.Generate(), req.Filename)
	contentType := h.contentTypeDetector.DetectFromFilename(req.Filename)

	key, err := h.upload(r.Context(), "text", filename, []byte(req.TextContent), contentType)
	if err != nil {
		h.fail(w, "upload", err)
		return
	}

	url := h.config.Storage.ObjectURL(key)
	level.Info(h.logger).Log("msg", "text uploaded", "filename", key, "content_type", contentType, "url", url)
	writeJSON(w, http.StatusOK, h.responseFormatter.FormatUploadResponse(url, key))
}

// HealthHandler reports that the process is serving.
func (h *HTTPHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// chartSpec applies the configured validation mode. Strict mode forwards
// only type and data; passthrough forwards the whole body.
func (h *HTTPHandler) chartSpec(options map[string]json.RawMessage) (render.Spec, error) {
	if h.config.ChartValidation == config.ValidationPassthrough {
		return render.SpecFromOptions(options), nil
	}
	if !present(options["type"]) || !present(options["data"]) {
		return render.Spec{}, &RequestError{Message: MsgMissingChartParams}
	}
	return render.SpecFromOptions(map[string]json.RawMessage{
		"type": options["type"],
		"data": options["data"],
	}), nil
}

func (h *HTTPHandler) render(ctx context.Context, spec render.Spec) ([]byte, error) {
	start := time.Now()
	image, err := h.renderer.Render(ctx, spec)

	chartType := spec.Type
	if !render.Supported(chartType) {
		chartType = "other"
	}
	h.metrics.ObserveRender(chartType, err, time.Since(start))
	return image, err
}

func (h *HTTPHandler) upload(ctx context.Context, kind, key string, data []byte, contentType string) (string, error) {
	if h.store == nil {
		return "", errors.New("storage client is not initialized")
	}
	stored, err := h.store.PutObject(ctx, key, data, contentType)
	h.metrics.ObserveUpload(kind, len(data), err)
	if err != nil {
		return "", err
	}
	level.Debug(h.logger).Log("msg", "object stored", "key", stored, "size", humanize.Bytes(uint64(len(data))))
	return stored, nil
}

// fail logs err and writes the matching error envelope.
func (h *HTTPHandler) fail(w http.ResponseWriter, op string, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		level.Error(h.logger).Log("msg", op+" request failed", "status", status, "err", err)
	} else {
		level.Warn(h.logger).Log("msg", op+" request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, h.responseFormatter.FormatErrorResponse(message))
}

// decodeBody reads a JSON body into dst. An empty body, or valid JSON that
// is not an object, leaves dst untouched so the field checks reject it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &RequestError{Message: MsgInvalidJSON, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return &RequestError{Message: MsgInvalidJSON, Err: err}
	}
	if _, ok := value.(map[string]any); !ok {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &RequestError{Message: MsgInvalidJSON, Err: err}
	}
	return nil
}

// present reports whether raw holds a value other than null, false, 0 or "".
func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", `""`:
		return false
	}
	if c := raw[0]; c == '-' || (c >= '0' && c <= '9') {
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil && n == 0 {
			return false
		}
	}
	return true
}

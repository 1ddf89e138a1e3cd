package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/weberyanglalala/gpt-chart-express-server/internal/config"
	"github.com/weberyanglalala/gpt-chart-express-server/internal/render"
)

// MockRenderer returns a fixed image or error and records the specs it saw.
type MockRenderer struct {
	mu     sync.Mutex
	image  []byte
	err    error
	specs  []render.Spec
	render func(render.Spec) ([]byte, error)
}

func NewMockRenderer(image []byte) *MockRenderer {
	return &MockRenderer{image: image}
}

func (m *MockRenderer) Render(ctx context.Context, spec render.Spec) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specs = append(m.specs, spec)
	if m.render != nil {
		return m.render(spec)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.image, nil
}

func (m *MockRenderer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.specs)
}

// MockObjectStore implements a mock version of ObjectStore for testing
type MockObjectStore struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	putError     error
	calls        int
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (m *MockObjectStore) PutObject(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.putError != nil {
		return "", m.putError
	}
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return key, nil
}

func (m *MockObjectStore) SetPutError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putError = err
}

func (m *MockObjectStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// fixedIDGenerator returns the same id on every call.
type fixedIDGenerator string

func (g fixedIDGenerator) Generate() string { return string(g) }

var fixedTime = time.UnixMilli(1723197600123)

func fixedClock() time.Time { return fixedTime }

func testConfig() *config.Config {
	return &config.Config{
		Port: "3000",
		Storage: config.StorageConfig{
			BucketName:      "charts",
			EndpointURL:     "https://acct.r2.cloudflarestorage.com",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			PublicURL:       "https://cdn.example.com",
			Region:          "auto",
		},
		ChartValidation: config.ValidationStrict,
		ChartWidth:      800,
		ChartHeight:     600,
		LogLevel:        "info",
		LogFormat:       "logfmt",
	}
}

// createTestHandler creates a handler with mock collaborators for testing
func createTestHandler(cfg *config.Config, renderer render.Renderer, store *MockObjectStore, opts ...Option) *HTTPHandler {
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return NewHTTPHandler(cfg, renderer, store, opts...)
}

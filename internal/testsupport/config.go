package testsupport

import (
	"path/filepath"
	"testing"

	"roadmap/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.FilesDir = filepath.Join(base, "files")
	cfgVal.Paths.CatalogPath = filepath.Join(base, "catalog.yaml")
	cfgVal.Paths.ManifestPath = filepath.Join(base, "manifest.yaml")
	cfgVal.API.Bind = "127.0.0.1:0"
	cfgVal.API.Token = "test-token"
	cfgVal.Remote.Token = "test-token"
	cfgVal.Remote.TimeoutSeconds = 2
	cfgVal.Remote.WriteAttempts = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithToken sets both the server and client bearer token.
func WithToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.Token = token
		b.cfg.Remote.Token = token
	}
}

// WithRemote points the client at baseURL.
func WithRemote(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Remote.BaseURL = baseURL
	}
}

// WithSampleFiles writes the embedded sample catalog and manifest to the
// configured paths.
func WithSampleFiles() ConfigOption {
	return func(b *configBuilder) {
		WriteSampleCatalog(b.t, b.cfg.Paths.CatalogPath)
		WriteSampleManifest(b.t, b.cfg.Paths.ManifestPath)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

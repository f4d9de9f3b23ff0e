package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"roadmap/internal/catalog"
	"roadmap/internal/manifest"
)

// WriteFile writes contents to path, creating parent directories.
func WriteFile(t testing.TB, path string, contents []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteCatalog writes catalog YAML to path.
func WriteCatalog(t testing.TB, path, yaml string) {
	t.Helper()
	WriteFile(t, path, []byte(yaml))
}

// WriteManifest writes manifest YAML to path.
func WriteManifest(t testing.TB, path, yaml string) {
	t.Helper()
	WriteFile(t, path, []byte(yaml))
}

// WriteSampleCatalog writes the embedded sample catalog to path.
func WriteSampleCatalog(t testing.TB, path string) {
	t.Helper()
	WriteFile(t, path, catalog.SampleBytes())
}

// WriteSampleManifest writes the embedded sample manifest to path.
func WriteSampleManifest(t testing.TB, path string) {
	t.Helper()
	WriteFile(t, path, manifest.SampleBytes())
}

// SampleCatalog returns a fresh copy of the embedded sample catalog.
func SampleCatalog() *catalog.Catalog {
	return catalog.Sample()
}

// SampleManifest returns a fresh copy of the embedded sample manifest.
func SampleManifest() *manifest.Manifest {
	return manifest.Sample()
}

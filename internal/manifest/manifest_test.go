package manifest_test

import (
	"strings"
	"testing"

	"roadmap/internal/manifest"
)

func TestSampleManifestPassesCheck(t *testing.T) {
	man := manifest.Sample()
	if violations := man.Check(); len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}

func TestIndexSkipsPlaceholders(t *testing.T) {
	man := &manifest.Manifest{Entries: []manifest.Entry{
		{Section: "s", View: "hub", Covers: []string{"m1"}, Genuine: false},
		{Section: "s", View: "one", Covers: []string{"m1", "m2"}, Genuine: true},
		{Section: "s", View: "two", Covers: []string{"m1"}, Genuine: true, Persistent: true},
	}}

	idx := man.Index()
	if got := len(idx["m1"]); got != 2 {
		t.Fatalf("expected m1 covered by 2 genuine entries, got %d", got)
	}
	if idx["m1"][0].View != "one" || idx["m1"][1].View != "two" {
		t.Fatalf("expected manifest order, got %+v", idx["m1"])
	}
	if got := len(idx["m2"]); got != 1 {
		t.Fatalf("expected m2 covered once, got %d", got)
	}

	placeholders := man.Placeholders()
	if len(placeholders) != 1 || placeholders[0].Ref() != "s/hub" {
		t.Fatalf("unexpected placeholders: %+v", placeholders)
	}
}

func TestNilManifestIndexIsEmpty(t *testing.T) {
	var man *manifest.Manifest
	if idx := man.Index(); len(idx) != 0 {
		t.Fatalf("expected empty index, got %v", idx)
	}
}

func TestParseTrimsCoveredIDs(t *testing.T) {
	man, err := manifest.Parse([]byte(`
entries:
  - section: shop
    view: cart
    covers: [" checkout ", ""]
    genuine: true
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	covers := man.Entries[0].Covers
	if len(covers) != 1 || covers[0] != "checkout" {
		t.Fatalf("expected [checkout], got %q", covers)
	}
}

func TestCheckReportsDefects(t *testing.T) {
	man := &manifest.Manifest{Entries: []manifest.Entry{
		{Section: "a", View: "hub", Covers: []string{"m1"}},
		{Section: "a", View: "real", Genuine: true},
		{Section: "a", View: "twice", Covers: []string{"m2", "m2"}, Genuine: true},
		{Section: "a", View: "twice", Covers: []string{"m3"}, Genuine: true},
		{View: "orphan-view", Covers: []string{"m4"}, Genuine: true},
	}}

	var lines []string
	for _, v := range man.Check() {
		lines = append(lines, v.String())
	}
	text := strings.Join(lines, "\n")
	for _, fragment := range []string{
		"a/hub: placeholder entry declares coverage",
		"a/real: genuine entry covers no modules",
		`a/twice: covers "m2" more than once`,
		"a/twice: duplicate section/view",
		"entry #5: section and view are required",
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in:\n%s", fragment, text)
		}
	}
}

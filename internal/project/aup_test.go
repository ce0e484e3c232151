package project

import (
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"otterpack/internal/failures"
)

type manifest struct {
	XMLName  xml.Name `xml:"project"`
	ProjName string   `xml:"projname,attr"`
	Rate     string   `xml:"rate,attr"`
	Imports  []struct {
		Filename string `xml:"filename,attr"`
		Offset   string `xml:"offset,attr"`
	} `xml:"import"`
}

func TestExportWritesOneImportPerFile(t *testing.T) {
	root := t.TempDir()
	files := []string{"1-alice.flac", "2-bob & co.flac", `3-"quoted".flac`}

	path, err := Export(root, files, WithSampleRate(44100))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if path != filepath.Join(root, "craig.aup") {
		t.Fatalf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "-//audacityproject-1.3.0//DTD//EN") {
		t.Fatalf("missing doctype: %s", text)
	}
	if !strings.Contains(text, "bob &amp; co") {
		t.Fatalf("expected escaped ampersand: %s", text)
	}

	var m manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not valid xml: %v", err)
	}
	if m.ProjName != "craig_data" || m.Rate != "44100" {
		t.Fatalf("unexpected project attrs %+v", m)
	}
	if len(m.Imports) != len(files) {
		t.Fatalf("imports = %d, want %d", len(m.Imports), len(files))
	}
	for i, imp := range m.Imports {
		if imp.Filename != files[i] {
			t.Fatalf("import %d = %q, want %q", i, imp.Filename, files[i])
		}
		if imp.Offset != "0.00000000" {
			t.Fatalf("unexpected offset %q", imp.Offset)
		}
	}
}

func TestExportDefaultsRate(t *testing.T) {
	body := string(Render(nil, DefaultSampleRate))
	if !strings.Contains(body, `rate="48000"`) {
		t.Fatalf("expected default rate: %s", body)
	}
	if strings.Contains(body, "<import") {
		t.Fatalf("expected no imports: %s", body)
	}
}

func TestExportMissingRootIsExportError(t *testing.T) {
	_, err := Export(filepath.Join(t.TempDir(), "missing"), []string{"a.flac"})
	if !errors.Is(err, failures.ErrExport) {
		t.Fatalf("expected export error, got %v", err)
	}
}

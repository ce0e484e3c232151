package testsupport

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// ZipEntry describes one member of an in-memory test archive. Names ending in
// "/" become directory entries.
type ZipEntry struct {
	Name string
	Body string
	Mode os.FileMode
}

// BuildZip assembles a zip archive from entries.
func BuildZip(t testing.TB, entries ...ZipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		header := &zip.FileHeader{Name: entry.Name, Method: zip.Deflate}
		switch {
		case entry.Mode != 0:
			header.SetMode(entry.Mode)
		case len(entry.Name) > 0 && entry.Name[len(entry.Name)-1] == '/':
			header.SetMode(os.ModeDir | 0o755)
		default:
			header.SetMode(0o644)
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", entry.Name, err)
		}
		if entry.Body != "" {
			if _, err := w.Write([]byte(entry.Body)); err != nil {
				t.Fatalf("write zip entry %s: %v", entry.Name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// BuildContainer writes prefix followed by archive to a file in a temp dir,
// mimicking an executable with an appended resource archive.
func BuildContainer(t testing.TB, prefix, archive []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "container.bin")
	data := make([]byte, 0, len(prefix)+len(archive))
	data = append(data, prefix...)
	data = append(data, archive...)
	if err := os.WriteFile(path, data, 0o755); err != nil {
		t.Fatalf("write container: %v", err)
	}
	return path
}

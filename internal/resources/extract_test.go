package resources

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"otterpack/internal/failures"
	"otterpack/internal/testsupport"
)

func locateContainer(t *testing.T, entries ...testsupport.ZipEntry) Origin {
	t.Helper()
	archive := testsupport.BuildZip(t, entries...)
	container := testsupport.BuildContainer(t, []byte("header-bytes"), archive)
	origin, err := LocateIn(container, 0)
	if err != nil {
		t.Fatalf("LocateIn: %v", err)
	}
	return origin
}

func TestExtractKeepsOnlyFlatEntries(t *testing.T) {
	origin := locateContainer(t,
		testsupport.ZipEntry{Name: "a.txt", Body: "alpha"},
		testsupport.ZipEntry{Name: "dir/"},
		testsupport.ZipEntry{Name: "dir/b.txt", Body: "beta"},
	)

	resolved, err := Extract(origin, t.TempDir())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	defer resolved.Release()

	entries, err := os.ReadDir(resolved.Path)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if len(names) != 1 || names[0] != "a.txt" {
		t.Fatalf("expected only a.txt, got %v", names)
	}
	content, err := os.ReadFile(filepath.Join(resolved.Path, "a.txt"))
	if err != nil || string(content) != "alpha" {
		t.Fatalf("unexpected content %q err=%v", content, err)
	}
	if !resolved.Owned() || len(resolved.Digest) != 64 {
		t.Fatalf("expected owned resolved with digest, got %+v", resolved)
	}
}

func TestExtractDuplicateEntryLastWins(t *testing.T) {
	origin := locateContainer(t,
		testsupport.ZipEntry{Name: "1-alice.flac", Body: "first take"},
		testsupport.ZipEntry{Name: "1-alice.flac", Body: "second"},
	)

	resolved, err := Extract(origin, t.TempDir())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	defer resolved.Release()

	content, err := os.ReadFile(filepath.Join(resolved.Path, "1-alice.flac"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(content) != "second" {
		t.Fatalf("expected last entry to win, got %q", content)
	}
}

func TestExtractHonoursExecutableBit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on windows")
	}
	origin := locateContainer(t, testsupport.ZipEntry{Name: "ffmpeg", Body: "#!/bin/sh\n", Mode: 0o755})
	resolved, err := Extract(origin, t.TempDir())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	defer resolved.Release()
	info, err := os.Stat(filepath.Join(resolved.Path, "ffmpeg"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected executable mode, got %v", info.Mode())
	}
}

func TestReleaseRemovesOwnedDirectoryOnce(t *testing.T) {
	origin := locateContainer(t, testsupport.ZipEntry{Name: "a.txt", Body: "alpha"})
	resolved, err := Extract(origin, t.TempDir())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if err := resolved.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(resolved.Path); !os.IsNotExist(err) {
		t.Fatalf("expected directory removed, stat err=%v", err)
	}
	if err := resolved.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}

func TestExtractDevFolderIsBorrowed(t *testing.T) {
	dir := t.TempDir()
	resolved, err := Extract(DevFolder(dir), "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if resolved.Owned() || resolved.Path != dir || resolved.Digest != "" {
		t.Fatalf("unexpected resolved %+v", resolved)
	}
	if err := resolved.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("dev folder must survive Release: %v", err)
	}
}

func TestExtractCorruptArchive(t *testing.T) {
	data := append([]byte("prefix"), 'P', 'K', 0x03, 0x04)
	data = append(data, []byte("garbage that is not a zip")...)
	container := testsupport.BuildContainer(t, data, nil)
	origin, err := LocateIn(container, 0)
	if err != nil {
		t.Fatalf("LocateIn: %v", err)
	}
	tempRoot := t.TempDir()
	if _, err := Extract(origin, tempRoot); !errors.Is(err, failures.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	leftovers, _ := os.ReadDir(tempRoot)
	if len(leftovers) != 0 {
		t.Fatalf("expected no temp dirs after failure, found %d", len(leftovers))
	}
}

func TestListReportsFlatness(t *testing.T) {
	origin := locateContainer(t,
		testsupport.ZipEntry{Name: "ffmpeg", Body: "bin"},
		testsupport.ZipEntry{Name: "dir/"},
		testsupport.ZipEntry{Name: "dir/b.txt", Body: "beta"},
	)
	listing, err := List(origin)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listing.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %+v", listing.Entries)
	}
	flat := map[string]bool{}
	for _, e := range listing.Entries {
		flat[e.Name] = e.Flat
	}
	if !flat["ffmpeg"] || flat["dir/"] || flat["dir/b.txt"] {
		t.Fatalf("unexpected flatness %v", flat)
	}
	if listing.Entries[0].Size != 3 {
		t.Fatalf("unexpected size %d", listing.Entries[0].Size)
	}
	if _, err := List(DevFolder(t.TempDir())); !errors.Is(err, failures.ErrExtraction) {
		t.Fatalf("expected error listing dev folder, got %v", err)
	}
}

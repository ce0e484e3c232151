package resources

import (
	"archive/zip"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"otterpack/internal/failures"
)

// Extract materializes origin into a directory. Dev folders are returned as
// is. Embedded archives are read fully into memory and their top-level file
// entries written into a fresh directory under tempRoot (os.TempDir when
// empty); directory entries and nested paths are skipped.
func Extract(origin Origin, tempRoot string) (*Resolved, error) {
	switch origin.Kind {
	case KindDevFolder:
		return &Resolved{Path: origin.Path}, nil
	case KindEmbeddedArchive:
	default:
		return nil, failures.Wrap(failures.ErrExtraction, "extract", "origin", fmt.Sprintf("unsupported origin kind %s", origin.Kind), nil)
	}

	data, err := readRegion(origin)
	if err != nil {
		return nil, err
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, failures.Wrap(failures.ErrExtraction, "extract", "open archive", origin.ContainerPath, err)
	}

	dir, err := os.MkdirTemp(tempRoot, "otterpack-*")
	if err != nil {
		return nil, failures.Wrap(failures.ErrExtraction, "extract", "create temp dir", tempRoot, err)
	}
	owner := &tempDir{path: dir}

	for _, entry := range reader.File {
		if !isFlatEntry(entry) {
			continue
		}
		if err := writeEntry(dir, entry); err != nil {
			_ = owner.remove()
			return nil, failures.Wrap(failures.ErrExtraction, "extract", "write entry", entry.Name, err)
		}
	}

	sum := blake3.Sum256(data)
	return &Resolved{owner: owner, Path: dir, Digest: hex.EncodeToString(sum[:])}, nil
}

func readRegion(origin Origin) ([]byte, error) {
	if origin.Offset < 0 || origin.Length <= 0 {
		return nil, failures.Wrap(failures.ErrExtraction, "extract", "read archive", fmt.Sprintf("invalid region offset=%d length=%d", origin.Offset, origin.Length), nil)
	}
	file, err := os.Open(origin.ContainerPath)
	if err != nil {
		return nil, failures.Wrap(failures.ErrExtraction, "extract", "open container", origin.ContainerPath, err)
	}
	defer file.Close()

	data := make([]byte, origin.Length)
	if _, err := file.ReadAt(data, origin.Offset); err != nil {
		return nil, failures.Wrap(failures.ErrExtraction, "extract", "read archive", origin.ContainerPath, err)
	}
	return data, nil
}

func isFlatEntry(entry *zip.File) bool {
	name := entry.Name
	if name == "" || name == "." || name == ".." {
		return false
	}
	if entry.FileInfo().IsDir() {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func writeEntry(dir string, entry *zip.File) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	target := filepath.Join(dir, entry.Name)
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, entryMode(entry))
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy to %s: %w", target, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	return nil
}

func entryMode(entry *zip.File) fs.FileMode {
	if entry.Mode().Perm()&0o111 != 0 {
		return 0o755
	}
	return 0o644
}

package resources

import (
	"archive/zip"
	"bytes"
	"encoding/hex"
	"io/fs"

	"github.com/zeebo/blake3"

	"otterpack/internal/failures"
)

// Entry describes one archive member.
type Entry struct {
	Name string
	Size uint64
	Mode fs.FileMode
	// Flat reports whether Extract would materialize the entry.
	Flat bool
}

// Listing is the table of contents of an embedded archive.
type Listing struct {
	Origin  Origin
	Digest  string
	Entries []Entry
}

// List reads the archive described by origin without extracting it.
func List(origin Origin) (Listing, error) {
	if origin.Kind != KindEmbeddedArchive {
		return Listing{}, failures.Wrap(failures.ErrExtraction, "inspect", "origin", "only embedded archives can be listed", nil)
	}
	data, err := readRegion(origin)
	if err != nil {
		return Listing{}, err
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Listing{}, failures.Wrap(failures.ErrExtraction, "inspect", "open archive", origin.ContainerPath, err)
	}
	sum := blake3.Sum256(data)
	listing := Listing{Origin: origin, Digest: hex.EncodeToString(sum[:])}
	for _, f := range reader.File {
		listing.Entries = append(listing.Entries, Entry{
			Name: f.Name,
			Size: f.UncompressedSize64,
			Mode: f.Mode(),
			Flat: isFlatEntry(f),
		})
	}
	return listing, nil
}

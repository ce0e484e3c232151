package convert

import (
	"fmt"
	"slices"
	"strings"

	"otterpack/internal/failures"
)

// Format describes one selectable output format.
type Format struct {
	Name        string
	DisplayName string
	Extension   string
	// Project formats also write a manifest and place audio under a data folder.
	Project     bool
	EncoderArgs []string
}

var formats = []Format{
	{Name: "flac", DisplayName: "FLAC", Extension: "flac", EncoderArgs: []string{"-c:a", "flac", "-f", "flac"}},
	{Name: "wav", DisplayName: "WAV", Extension: "wav", EncoderArgs: []string{"-c:a", "pcm_s16le", "-f", "wav"}},
	{Name: "aac", DisplayName: "AAC", Extension: "m4a", EncoderArgs: []string{"-c:a", "aac", "-f", "ipod"}},
	{Name: "alac", DisplayName: "ALAC", Extension: "m4a", EncoderArgs: []string{"-c:a", "alac", "-f", "ipod"}},
	{Name: "aup", DisplayName: "Audacity project", Extension: "flac", Project: true, EncoderArgs: []string{"-c:a", "flac", "-f", "flac"}},
}

// Formats returns the fixed format table in display order.
func Formats() []Format {
	out := make([]Format, len(formats))
	for i, f := range formats {
		f.EncoderArgs = slices.Clone(f.EncoderArgs)
		out[i] = f
	}
	return out
}

// LookupFormat finds a format by name, ignoring case.
func LookupFormat(name string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, f := range formats {
		if f.Name == key {
			f.EncoderArgs = slices.Clone(f.EncoderArgs)
			return f, nil
		}
	}
	return Format{}, failures.Wrap(failures.ErrValidation, "convert", "format", fmt.Sprintf("unknown format %q", name), nil)
}

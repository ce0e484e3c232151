// Package flacinfo reads the STREAMINFO block of a FLAC file.
package flacinfo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	blockTypeStreamInfo = 0
	streamInfoSize      = 34
)

// ErrNotFLAC is returned when the input lacks the "fLaC" marker.
var ErrNotFLAC = errors.New("not a FLAC stream")

// StreamInfo holds the fields of a FLAC STREAMINFO block that callers use.
type StreamInfo struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	TotalSamples  uint64
}

// Duration derives the stream length from the sample count.
func (s StreamInfo) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(s.TotalSamples) / float64(s.SampleRate) * float64(time.Second))
}

// ReadFile opens path and returns its STREAMINFO.
func ReadFile(path string) (StreamInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return StreamInfo{}, err
	}
	defer file.Close()
	info, err := Read(file)
	if err != nil {
		return StreamInfo{}, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}

// Read parses the leading metadata blocks of r until STREAMINFO is found.
// STREAMINFO must be the first block, but other blocks are tolerated before it.
func Read(r io.Reader) (StreamInfo, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return StreamInfo{}, fmt.Errorf("read magic: %w", err)
	}
	if string(magic[:]) != "fLaC" {
		return StreamInfo{}, ErrNotFLAC
	}

	for {
		var header [4]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return StreamInfo{}, fmt.Errorf("read block header: %w", err)
		}
		raw := binary.BigEndian.Uint32(header[:])
		last := raw>>31 == 1
		blockType := (raw >> 24) & 0x7f
		length := int64(raw & 0x00ffffff)

		if blockType == blockTypeStreamInfo {
			if length != streamInfoSize {
				return StreamInfo{}, fmt.Errorf("invalid STREAMINFO size %d", length)
			}
			var data [streamInfoSize]byte
			if _, err := io.ReadFull(r, data[:]); err != nil {
				return StreamInfo{}, fmt.Errorf("read STREAMINFO: %w", err)
			}
			return decodeStreamInfo(data[:]), nil
		}
		if last {
			return StreamInfo{}, errors.New("no STREAMINFO block")
		}
		if _, err := io.CopyN(io.Discard, r, length); err != nil {
			return StreamInfo{}, fmt.Errorf("skip block: %w", err)
		}
	}
}

// decodeStreamInfo unpacks bytes 10..17: sample rate (20 bits), channels-1
// (3 bits), bits per sample-1 (5 bits), total samples (36 bits).
func decodeStreamInfo(data []byte) StreamInfo {
	packed := binary.BigEndian.Uint64(data[10:18])
	return StreamInfo{
		SampleRate:    int((packed >> 44) & 0xfffff),
		Channels:      int((packed>>41)&0x7) + 1,
		BitsPerSample: int((packed>>36)&0x1f) + 1,
		TotalSamples:  packed & 0xfffffffff,
	}
}

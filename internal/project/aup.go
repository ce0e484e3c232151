// Package project writes the legacy Audacity multitrack project manifest that
// references converted capture files.
package project

import (
	"bytes"
	"encoding/xml"
	"path/filepath"
	"strconv"

	"otterpack/internal/failures"
	"otterpack/internal/fileutil"
)

const (
	// ManifestName is the file written into the output root.
	ManifestName = "craig.aup"
	// DataDir is the folder next to the manifest holding the imported files.
	DataDir = "craig_data"
	// DefaultSampleRate is used when no rate is supplied.
	DefaultSampleRate = 48000
)

// Option configures Export.
type Option func(*options)

type options struct {
	rate int
}

// WithSampleRate sets the project rate attribute. Non-positive values are ignored.
func WithSampleRate(rate int) Option {
	return func(o *options) {
		if rate > 0 {
			o.rate = rate
		}
	}
}

// Export writes outputRoot/craig.aup importing each of files, which are bare
// names relative to the manifest's data folder. It returns the manifest path.
func Export(outputRoot string, files []string, opts ...Option) (string, error) {
	cfg := options{rate: DefaultSampleRate}
	for _, opt := range opts {
		opt(&cfg)
	}

	target := filepath.Join(outputRoot, ManifestName)
	if err := fileutil.WriteFileAtomic(target, Render(files, cfg.rate), 0o644); err != nil {
		return "", failures.Wrap(failures.ErrExport, "export", "write manifest", target, err)
	}
	return target, nil
}

// Render produces the manifest body.
func Render(files []string, rate int) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" standalone="no" ?>` + "\n")
	buf.WriteString(`<!DOCTYPE project PUBLIC "-//audacityproject-1.3.0//DTD//EN" "http://audacity.sourceforge.net/xml/audacityproject-1.3.0.dtd" >` + "\n")
	buf.WriteString(`<project xmlns="http://audacity.sourceforge.net/xml/" projname="` + DataDir +
		`" version="1.3.0" audacityversion="2.2.2" sel0="0.0" sel1="0.0" vpos="0" h="0.0" zoom="86.1328125" rate="` +
		strconv.Itoa(rate) + `" snapto="off" selectionformat="hh:mm:ss + milliseconds" frequencyformat="Hz" bandwidthformat="octaves">` + "\n")
	buf.WriteString("\t<tags/>\n")
	for _, name := range files {
		buf.WriteString("\t<import filename=\"")
		_ = xml.EscapeText(&buf, []byte(name))
		buf.WriteString(`" offset="0.00000000" mute="0" solo="0" height="150" minimized="0" gain="1.0" pan="0.0"/>` + "\n")
	}
	buf.WriteString("</project>\n")
	return buf.Bytes()
}

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"otterpack/internal/convert"
)

func TestProgressPrinterReturnsTerminalEvent(t *testing.T) {
	events := make(chan convert.Event, 3)
	events <- convert.Event{Kind: convert.EventProcessing, Filename: "1-alice.flac", Index: 0, Total: 2}
	events <- convert.Event{Kind: convert.EventProcessing, Filename: "2-bob.flac", Index: 1, Total: 2}
	events <- convert.Event{Kind: convert.EventFailed, Err: errors.New("encoder exited with status 1")}
	close(events)

	var buf bytes.Buffer
	last := newProgressPrinter(&buf).consume(events)
	if last.Kind != convert.EventFailed {
		t.Fatalf("last event = %v, want failed", last.Kind)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	if lines[1] != "Processing 2-bob.flac [2/2]" {
		t.Fatalf("unexpected progress line %q", lines[1])
	}
	requireContains(t, lines[2], "[FAIL] encoder exited with status 1")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("non-terminal output should not contain escapes: %q", buf.String())
	}
}

func TestFollowConversionReturnsFailure(t *testing.T) {
	encodeErr := errors.New("encode: 2-bob.flac: exit status 1")
	events := make(chan convert.Event, 2)
	events <- convert.Event{Kind: convert.EventProcessing, Filename: "2-bob.flac", Index: 1, Total: 2}
	events <- convert.Event{Kind: convert.EventFailed, Err: encodeErr}
	close(events)

	waited := false
	var buf bytes.Buffer
	err := followConversion(events, newProgressPrinter(&buf), func() { waited = true })
	if !errors.Is(err, encodeErr) {
		t.Fatalf("expected encode error, got %v", err)
	}
	if !waited {
		t.Fatal("expected wait to be called")
	}
}

func TestFollowConversionRequiresTerminalEvent(t *testing.T) {
	events := make(chan convert.Event, 1)
	events <- convert.Event{Kind: convert.EventProcessing, Filename: "a.flac", Total: 1}
	close(events)

	var buf bytes.Buffer
	if err := followConversion(events, newProgressPrinter(&buf), func() {}); err == nil {
		t.Fatal("expected error for a stream without a terminal event")
	}

	finished := make(chan convert.Event, 1)
	finished <- convert.Event{Kind: convert.EventFinished}
	close(finished)
	if err := followConversion(finished, newProgressPrinter(&buf), func() {}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

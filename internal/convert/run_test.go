package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"otterpack/internal/failures"
	"otterpack/internal/resources"
	"otterpack/internal/testsupport"
)

type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitStatus) ExitCode() int { return int(e) }

type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	failAt int
	code   int
	onRun  func(call int)
}

func (f *fakeRunner) Run(_ context.Context, _ string, args []string) error {
	f.mu.Lock()
	f.calls = append(f.calls, slices.Clone(args))
	call := len(f.calls)
	f.mu.Unlock()
	if f.onRun != nil {
		f.onRun(call)
	}
	if call == f.failAt {
		return exitStatus(f.code)
	}
	return os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644)
}

func newResourceDir(t *testing.T, captures ...string) string {
	t.Helper()
	dir := t.TempDir()
	testsupport.WriteFiles(t, dir, resources.DefaultBinary())
	testsupport.WriteFiles(t, dir, captures...)
	return dir
}

func mustFormat(t *testing.T, name string) Format {
	t.Helper()
	f, err := LookupFormat(name)
	if err != nil {
		t.Fatalf("LookupFormat(%q): %v", name, err)
	}
	return f
}

func TestRunPerFileEmitsOrderedProgress(t *testing.T) {
	resDir := newResourceDir(t, "2-bob.flac", "1-alice.FLAC", "3-carol.flac", "notes.txt")
	out := filepath.Join(t.TempDir(), "out")
	runner := &fakeRunner{}
	emit := NewEmitter(0)

	res, err := Run(context.Background(), Request{ResourcePath: resDir, OutputRoot: out, Format: mustFormat(t, "wav")}, runner, emit)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	events := drain(emit.Events())
	if len(events) != 4 {
		t.Fatalf("expected 3 processing + 1 terminal, got %+v", events)
	}
	wantNames := []string{"1-alice.FLAC", "2-bob.flac", "3-carol.flac"}
	for i, ev := range events[:3] {
		if ev.Kind != EventProcessing || ev.Index != i || ev.Total != 3 || ev.Filename != wantNames[i] {
			t.Fatalf("event %d = %+v", i, ev)
		}
	}
	if events[3].Kind != EventFinished {
		t.Fatalf("expected finished, got %+v", events[3])
	}
	if len(res.Outputs) != 3 || res.Outputs[0] != filepath.Join(out, "1-alice.wav") {
		t.Fatalf("unexpected outputs %v", res.Outputs)
	}
	first := strings.Join(runner.calls[0], " ")
	want := "-y -i " + filepath.Join(resDir, "1-alice.FLAC") + " -c:a pcm_s16le -f wav " + filepath.Join(out, "1-alice.wav")
	if first != want {
		t.Fatalf("args = %q\nwant   %q", first, want)
	}
}

func TestRunNormalizeAddsFilter(t *testing.T) {
	resDir := newResourceDir(t, "a.flac")
	runner := &fakeRunner{}
	if _, err := Run(context.Background(), Request{ResourcePath: resDir, OutputRoot: t.TempDir(), Format: mustFormat(t, "aac"), Normalize: true}, runner, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	args := runner.calls[0]
	if !slices.Contains(args, "dynaudnorm") || args[len(args)-1] != filepath.Join(filepath.Dir(args[len(args)-1]), "a.m4a") {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestRunFailFastStopsRemainingInvocations(t *testing.T) {
	resDir := newResourceDir(t, "1.flac", "2.flac", "3.flac", "4.flac", "5.flac")
	runner := &fakeRunner{failAt: 2, code: 7}
	emit := NewEmitter(0)

	_, err := Run(context.Background(), Request{ResourcePath: resDir, OutputRoot: t.TempDir(), Format: mustFormat(t, "flac")}, runner, emit)
	if !errors.Is(err, failures.ErrEncode) {
		t.Fatalf("expected encode error, got %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected invocation 3 never attempted, got %d calls", len(runner.calls))
	}
	events := drain(emit.Events())
	last := events[len(events)-1]
	if last.Kind != EventFailed {
		t.Fatalf("expected failed terminal event, got %+v", last)
	}
	if code, ok := failures.ExitCode(last.Err); !ok || code != 7 {
		t.Fatalf("terminal event should carry exit status 7, got %d %v", code, ok)
	}
	terminals := 0
	for _, ev := range events {
		if ev.Terminal() {
			terminals++
		}
	}
	if terminals != 1 {
		t.Fatalf("expected exactly one terminal event, got %d", terminals)
	}
}

func TestRunMixUsesSingleInvocation(t *testing.T) {
	var captures []string
	for i := range 33 {
		captures = append(captures, fmt.Sprintf("%02d.flac", i))
	}
	resDir := newResourceDir(t, captures...)
	out := t.TempDir()
	runner := &fakeRunner{}
	emit := NewEmitter(0)

	res, err := Run(context.Background(), Request{ResourcePath: resDir, OutputRoot: out, Format: mustFormat(t, "flac"), Mix: true}, runner, emit)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(runner.calls))
	}
	args := runner.calls[0]
	if got := strings.Count(strings.Join(args, " "), " -i "); got != 33 {
		t.Fatalf("expected 33 inputs, got %d", got)
	}
	idx := slices.Index(args, "-filter_complex")
	if idx < 0 || strings.Count(args[idx+1], "amix=") != 2 {
		t.Fatalf("expected two chained amix stages, got %v", args)
	}
	if args[idx+2] != "-map" || args[idx+3] != "[aud]" {
		t.Fatalf("expected -map [aud] after graph, got %v", args[idx+2:idx+4])
	}
	if res.Outputs[0] != filepath.Join(out, "mixed.flac") {
		t.Fatalf("unexpected output %v", res.Outputs)
	}
	events := drain(emit.Events())
	if events[0].Filename != MixedOutputLabel || events[0].Index != 0 || events[0].Total != 1 {
		t.Fatalf("unexpected mix event %+v", events[0])
	}
}

func TestRunProjectFormatWritesManifest(t *testing.T) {
	resDir := newResourceDir(t, "1-alice.flac", "2-bob.flac")
	out := filepath.Join(t.TempDir(), "session")
	runner := &fakeRunner{}

	res, err := Run(context.Background(), Request{ResourcePath: resDir, OutputRoot: out, Format: mustFormat(t, "aup")}, runner, nil,
		WithSampleRateProbe(func(string) (int, error) { return 44100, nil }))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, name := range []string{"1-alice.flac", "2-bob.flac"} {
		if _, err := os.Stat(filepath.Join(out, "craig_data", name)); err != nil {
			t.Fatalf("expected %s in craig_data: %v", name, err)
		}
	}
	if res.Manifest != filepath.Join(out, "craig.aup") {
		t.Fatalf("unexpected manifest %q", res.Manifest)
	}
	data, err := os.ReadFile(res.Manifest)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if strings.Count(string(data), "<import ") != 2 || !strings.Contains(string(data), `rate="44100"`) {
		t.Fatalf("unexpected manifest:\n%s", data)
	}
}

func TestRunMissingBinaryFailsBeforeInvocations(t *testing.T) {
	resDir := t.TempDir()
	testsupport.WriteFiles(t, resDir, "a.flac")
	out := filepath.Join(t.TempDir(), "out")
	runner := &fakeRunner{}
	emit := NewEmitter(0)

	_, err := Run(context.Background(), Request{ResourcePath: resDir, OutputRoot: out, Format: mustFormat(t, "flac")}, runner, emit)
	if !errors.Is(err, failures.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("expected no invocations, got %d", len(runner.calls))
	}
	if _, statErr := os.Stat(out); statErr != nil {
		t.Fatalf("output root should be created before validation: %v", statErr)
	}
	events := drain(emit.Events())
	if len(events) != 1 || events[0].Kind != EventFailed {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestRunCancellationLetsCurrentInvocationFinish(t *testing.T) {
	resDir := newResourceDir(t, "1.flac", "2.flac", "3.flac")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := &fakeRunner{onRun: func(call int) {
		if call == 1 {
			cancel()
		}
	}}

	res, err := Run(ctx, Request{ResourcePath: resDir, OutputRoot: t.TempDir(), Format: mustFormat(t, "flac")}, runner, nil)
	if !errors.Is(err, failures.ErrCanceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
	if len(runner.calls) != 1 || len(res.Outputs) != 1 {
		t.Fatalf("expected first invocation to complete and no more, calls=%d outputs=%d", len(runner.calls), len(res.Outputs))
	}
}

func TestLookupFormat(t *testing.T) {
	f, err := LookupFormat(" ALAC ")
	if err != nil || f.Extension != "m4a" || f.Project {
		t.Fatalf("unexpected alac format %+v err=%v", f, err)
	}
	aup := mustFormat(t, "aup")
	if !aup.Project || aup.Extension != "flac" {
		t.Fatalf("unexpected project format %+v", aup)
	}
	if _, err := LookupFormat("mp3"); !errors.Is(err, failures.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	all := Formats()
	all[0].EncoderArgs[0] = "mutated"
	if mustFormat(t, "flac").EncoderArgs[0] != "-c:a" {
		t.Fatal("Formats must return copies")
	}
}

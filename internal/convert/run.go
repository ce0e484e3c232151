package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"otterpack/internal/failures"
	"otterpack/internal/flacinfo"
	"otterpack/internal/logging"
	"otterpack/internal/project"
	"otterpack/internal/resources"
)

// Runner executes a single encoder invocation and waits for it.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Result summarizes a completed run.
type Result struct {
	OutputDir string
	Inputs    []string
	// Outputs are the paths produced, in invocation order.
	Outputs  []string
	Manifest string
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger     *slog.Logger
	sampleRate func(path string) (int, error)
}

// WithLogger sets the logger for run progress.
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = logger
	}
}

// WithSampleRateProbe overrides how the manifest rate is read from the first output.
func WithSampleRateProbe(probe func(path string) (int, error)) Option {
	return func(o *runOptions) {
		if probe != nil {
			o.sampleRate = probe
		}
	}
}

func flacSampleRate(path string) (int, error) {
	info, err := flacinfo.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return info.SampleRate, nil
}

// Run executes req. Invocations run one at a time and the first failure stops
// the run. When ctx is canceled the invocation in progress completes and no
// further one starts. Exactly one terminal event is sent on emit, which may
// be nil.
func Run(ctx context.Context, req Request, runner Runner, emit *Emitter, opts ...Option) (Result, error) {
	cfg := runOptions{sampleRate: flacSampleRate}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(cfg.logger, "convert"))

	result, err := run(ctx, req, runner, emit, cfg, logger)
	if err != nil {
		logger.Error("conversion failed",
			logging.String("kind", failures.Kind(err)),
			logging.Error(err),
		)
		emit.Fail(err)
		return result, err
	}
	logger.Info("conversion finished",
		logging.Int("outputs", len(result.Outputs)),
		logging.String("output_dir", result.OutputDir),
	)
	emit.Finish()
	return result, nil
}

func run(ctx context.Context, req Request, runner Runner, emit *Emitter, cfg runOptions, logger *slog.Logger) (Result, error) {
	result := Result{OutputDir: req.OutputDir()}
	if runner == nil {
		return result, failures.Wrap(failures.ErrValidation, "convert", "runner", "no runner configured", nil)
	}
	if req.Format.Name == "" {
		return result, failures.Wrap(failures.ErrValidation, "convert", "format", "no format selected", nil)
	}
	if err := os.MkdirAll(result.OutputDir, 0o755); err != nil {
		return result, failures.Wrap(failures.ErrValidation, "convert", "create output dir", result.OutputDir, err)
	}

	binary := req.Binary
	if binary == "" {
		binary = resources.DefaultBinary()
	}
	binaryPath, err := resources.RequireBinary(req.ResourcePath, binary, false)
	if err != nil {
		return result, err
	}

	inputs, err := ListInputs(req.ResourcePath)
	if err != nil {
		return result, err
	}
	result.Inputs = inputs

	plan := Plan(req, inputs)
	logger.Info("conversion planned",
		logging.String(logging.FieldFormat, req.Format.Name),
		logging.Int("inputs", len(inputs)),
		logging.Int(logging.FieldFileCount, len(plan)),
		logging.Bool("mix", req.Mix),
		logging.Bool("normalize", req.Normalize),
	)

	for i, inv := range plan {
		if err := ctx.Err(); err != nil {
			msg := fmt.Sprintf("stopped before %s (%d of %d completed)", inv.Label, i, len(plan))
			return result, failures.Wrap(failures.ErrCanceled, "convert", "schedule", msg, err)
		}
		emit.Processing(inv.Label, i, len(plan))
		jobLogger := logger.With(
			logging.String(logging.FieldFile, inv.Label),
			logging.Int(logging.FieldFileIndex, i+1),
			logging.Int(logging.FieldFileCount, len(plan)),
		)
		jobLogger.Debug("encoding", logging.String("output", inv.Output))
		if err := runner.Run(ctx, binaryPath, inv.Args); err != nil {
			return result, failures.Wrap(failures.ErrEncode, "convert", "encode", inv.Label, err)
		}
		result.Outputs = append(result.Outputs, inv.Output)
	}

	if req.Format.Project {
		manifest, err := exportProject(req, result.Outputs, cfg, logger)
		if err != nil {
			return result, err
		}
		result.Manifest = manifest
	}
	return result, nil
}

func exportProject(req Request, outputs []string, cfg runOptions, logger *slog.Logger) (string, error) {
	names := make([]string, len(outputs))
	for i, out := range outputs {
		names[i] = filepath.Base(out)
	}
	rate := project.DefaultSampleRate
	if len(outputs) > 0 {
		if probed, err := cfg.sampleRate(outputs[0]); err != nil {
			logger.Debug("sample rate probe failed; using default",
				logging.String("path", outputs[0]),
				logging.Int("rate", rate),
				logging.Error(err),
			)
		} else if probed > 0 {
			rate = probed
		}
	}
	return project.Export(req.OutputRoot, names, project.WithSampleRate(rate))
}

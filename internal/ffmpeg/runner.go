package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"otterpack/internal/logging"
)

// stderrTailSize bounds how much suppressed encoder stderr is kept for errors.
const stderrTailSize = 4 << 10

// ExitError reports a non-zero encoder exit.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("ffmpeg exited with status %d", e.Code)
	}
	return fmt.Sprintf("ffmpeg exited with status %d: %s", e.Code, e.Stderr)
}

// ExitCode returns the process exit status.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput mirrors encoder stdout and stderr into w.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.output = w
	}
}

// WithLogger sets the logger used for invocation tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner executes encoder invocations.
type Runner struct {
	output io.Writer
	logger *slog.Logger
}

// NewRunner constructs a Runner. Output is suppressed unless WithOutput is given.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "ffmpeg")
	return r
}

// Run executes binary with args and waits for it to exit. The child is not
// bound to ctx; cancellation only affects log correlation.
func (r *Runner) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.Command(binary, args...) //nolint:gosec
	tail := newTailBuffer(stderrTailSize)
	if r.output != nil {
		cmd.Stdout = r.output
		cmd.Stderr = r.output
	} else {
		cmd.Stderr = tail
	}

	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("starting encoder", logging.String("binary", binary), logging.String("args", strings.Join(args, " ")))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(tail.String())}
		}
		return fmt.Errorf("spawn %s: %w", binary, err)
	}
	return nil
}

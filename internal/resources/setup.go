package resources

import (
	"context"
	"log/slog"

	"otterpack/internal/failures"
	"otterpack/internal/logging"
)

// SetupOptions configures Setup.
type SetupOptions struct {
	Locate   LocateOptions
	TempRoot string
	Binary   string
	Logger   *slog.Logger
	// OnLocated, when set, is called from the setup goroutine after a
	// successful locate and before extraction starts.
	OnLocated func(Origin)
}

type setupResult struct {
	origin   Origin
	resolved *Resolved
	err      error
}

// Setup locates and extracts resources on a dedicated goroutine, then
// validates that the required binary is present. If ctx ends first, Setup
// returns a cancellation error and the pending extraction is released in the
// background once it completes.
func Setup(ctx context.Context, opts SetupOptions) (*Resolved, error) {
	logger := logging.NewComponentLogger(opts.Logger, "resources")
	if err := ctx.Err(); err != nil {
		return nil, failures.Wrap(failures.ErrCanceled, "setup", "prepare resources", "canceled", err)
	}
	done := make(chan setupResult, 1)

	go func() {
		origin, err := Locate(opts.Locate)
		if err != nil {
			done <- setupResult{err: err}
			return
		}
		if opts.OnLocated != nil {
			opts.OnLocated(origin)
		}
		resolved, err := Extract(origin, opts.TempRoot)
		done <- setupResult{origin: origin, resolved: resolved, err: err}
	}()

	var res setupResult
	select {
	case res = <-done:
	case <-ctx.Done():
		go func() {
			if late := <-done; late.resolved != nil {
				_ = late.resolved.Release()
			}
		}()
		return nil, failures.Wrap(failures.ErrCanceled, "setup", "prepare resources", "canceled", ctx.Err())
	}
	if res.err != nil {
		return nil, res.err
	}

	logger.Debug("resources ready",
		logging.String("origin", res.origin.String()),
		logging.String("path", res.resolved.Path),
		logging.Bool("owned", res.resolved.Owned()),
	)

	binary := opts.Binary
	if binary == "" {
		binary = opts.Locate.Binary
	}
	if binary == "" {
		binary = DefaultBinary()
	}
	if _, err := RequireBinary(res.resolved.Path, binary, res.resolved.Owned()); err != nil {
		_ = res.resolved.Release()
		return nil, err
	}
	return res.resolved, nil
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"otterpack/internal/config"
	"otterpack/internal/convert"
	"otterpack/internal/failures"
	"otterpack/internal/history"
	"otterpack/internal/logging"
	"otterpack/internal/resources"
)

// Options configures a Session.
type Options struct {
	Config  *config.Config
	Logger  *slog.Logger
	Runner  convert.Runner
	History *history.Store
	// Executable overrides the container scanned for the bundled archive.
	Executable  string
	TempRoot    string
	EventBuffer int
	// ConvertOptions are passed through to convert.Run.
	ConvertOptions []convert.Option
}

// Session runs one conversion from resource discovery to completion.
type Session struct {
	cfg     *config.Config
	logger  *slog.Logger
	runner  convert.Runner
	history *history.Store
	opts    Options
	runID   string

	mu       sync.Mutex
	state    State
	origin   resources.Origin
	resolved *resources.Resolved
	result   convert.Result
	err      error

	wg sync.WaitGroup
}

// New constructs an idle session.
func New(opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline: config is required")
	}
	if opts.Runner == nil {
		return nil, errors.New("pipeline: runner is required")
	}
	runID := uuid.NewString()
	logger := logging.NewComponentLogger(opts.Logger, "pipeline").With(logging.String(logging.FieldCorrelationID, runID))
	return &Session{
		cfg:     opts.Config,
		logger:  logger,
		runner:  opts.Runner,
		history: opts.History,
		opts:    opts,
		runID:   runID,
		state:   StateIdle,
	}, nil
}

// RunID identifies this session in logs and history.
func (s *Session) RunID() string {
	return s.runID
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Resources returns the prepared resources, or nil before Prepare succeeds.
func (s *Session) Resources() *resources.Resolved {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// Result returns the conversion outcome once the event stream has closed.
func (s *Session) Result() (convert.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.err
}

func (s *Session) transition(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.state.Next(to)
	if err != nil {
		return err
	}
	s.logger.Debug("state change", logging.String("from", s.state.String()), logging.String("to", next.String()))
	s.state = next
	return nil
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.err = err
	if next, tErr := s.state.Next(StateFailed); tErr == nil {
		s.state = next
	}
	s.mu.Unlock()
	return err
}

// Prepare locates and extracts resources and validates the encoder binary.
func (s *Session) Prepare(ctx context.Context) error {
	if err := s.transition(StateLocating); err != nil {
		return err
	}
	ctx = logging.WithStage(logging.WithRunID(ctx, s.runID), StateLocating.String())
	logger := logging.WithContext(ctx, logging.NewComponentLogger(s.opts.Logger, "pipeline"))

	res := s.cfg.Resources
	resolved, err := resources.Setup(ctx, resources.SetupOptions{
		Locate: resources.LocateOptions{
			DevMode:    res.DevMode,
			DevFolder:  res.DevFolder,
			Binary:     res.Binary,
			Executable: s.opts.Executable,
			Window:     s.cfg.SearchWindowBytes(),
		},
		TempRoot: s.opts.TempRoot,
		Binary:   res.Binary,
		Logger:   s.opts.Logger,
		OnLocated: func(origin resources.Origin) {
			s.mu.Lock()
			s.origin = origin
			s.mu.Unlock()
			if origin.Kind == resources.KindEmbeddedArchive {
				_ = s.transition(StateExtracting)
			}
		},
	})
	if err != nil {
		logger.Error("resource preparation failed", logging.String("kind", failures.Kind(err)), logging.Error(err))
		return s.fail(err)
	}

	s.mu.Lock()
	s.resolved = resolved
	s.mu.Unlock()
	if err := s.transition(StateReady); err != nil {
		_ = resolved.Release()
		return s.fail(err)
	}
	logger.Info("resources ready",
		logging.String("path", resolved.Path),
		logging.String("origin", s.origin.Kind.String()),
	)
	return nil
}

// Convert starts the conversion on its own goroutine and returns the event
// stream. ResourcePath and Binary in req are filled from the prepared
// resources. The stream always ends with exactly one terminal event.
func (s *Session) Convert(ctx context.Context, req convert.Request) <-chan convert.Event {
	emit := convert.NewEmitter(s.opts.EventBuffer)
	if err := s.transition(StateConverting); err != nil {
		emit.Fail(failures.Wrap(failures.ErrValidation, "convert", "start", "session not ready", err))
		return emit.Events()
	}

	s.mu.Lock()
	req.ResourcePath = s.resolved.Path
	s.mu.Unlock()
	if req.Binary == "" {
		req.Binary = s.cfg.Resources.Binary
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.convert(ctx, req, emit)
	}()
	return emit.Events()
}

func (s *Session) convert(ctx context.Context, req convert.Request, emit *convert.Emitter) {
	ctx = logging.WithStage(logging.WithRunID(ctx, s.runID), StateConverting.String())
	logger := logging.WithContext(ctx, logging.NewComponentLogger(s.opts.Logger, "pipeline"))
	started := time.Now()

	lock, err := acquireOutputLock(s.cfg.LockDir(), req.OutputRoot)
	if err != nil {
		logger.Error("conversion not started", logging.Error(err))
		emit.Fail(err)
		s.finish(ctx, req, convert.Result{}, err, started)
		return
	}
	defer func() {
		if err := lock.release(); err != nil {
			logger.Warn("failed to release output lock", logging.String("lock", lock.path), logging.Error(err))
		}
	}()

	opts := append([]convert.Option{convert.WithLogger(s.opts.Logger)}, s.opts.ConvertOptions...)
	result, err := convert.Run(ctx, req, s.runner, emit, opts...)
	s.finish(ctx, req, result, err, started)
}

// finish stores the outcome and records the run in history. It runs after the
// terminal event has been sent; callers needing Result should Wait first.
func (s *Session) finish(ctx context.Context, req convert.Request, result convert.Result, runErr error, started time.Time) {
	s.mu.Lock()
	s.result = result
	s.err = runErr
	to := StateDone
	if runErr != nil {
		to = StateFailed
	}
	if next, err := s.state.Next(to); err == nil {
		s.state = next
	}
	origin := s.origin
	digest := ""
	if s.resolved != nil {
		digest = s.resolved.Digest
	}
	s.mu.Unlock()

	if s.history == nil {
		return
	}
	run := history.Run{
		ID:            s.runID,
		StartedAt:     started,
		FinishedAt:    time.Now(),
		Status:        history.StatusFinished,
		Format:        req.Format.Name,
		Mix:           req.Mix,
		Normalize:     req.Normalize,
		Origin:        origin.Kind.String(),
		ArchiveDigest: digest,
		OutputRoot:    req.OutputRoot,
		Inputs:        len(result.Inputs),
		Outputs:       len(result.Outputs),
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.ErrorKind = failures.Kind(runErr)
		run.ErrorMessage = runErr.Error()
		if code, ok := failures.ExitCode(runErr); ok {
			run.ExitCode = &code
		}
	}
	// History is best effort; the run outcome does not depend on it.
	recordCtx := context.WithoutCancel(ctx)
	if err := s.history.Record(recordCtx, run); err != nil {
		s.logger.Warn("failed to record run history", logging.Error(err))
	}
}

// Wait blocks until a started conversion goroutine has returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close waits for any conversion in progress and releases extracted resources.
func (s *Session) Close() error {
	s.wg.Wait()
	s.mu.Lock()
	resolved := s.resolved
	s.mu.Unlock()
	if resolved == nil {
		return nil
	}
	if err := resolved.Release(); err != nil {
		return fmt.Errorf("release resources: %w", err)
	}
	return nil
}

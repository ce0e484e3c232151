package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"otterpack/internal/convert"
	"otterpack/internal/ffmpeg"
	"otterpack/internal/logging"
	"otterpack/internal/pipeline"
)

type convertFlags struct {
	output            string
	format            string
	normalize         bool
	mix               bool
	dev               bool
	showEncoderOutput bool
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert the bundled captures into the selected format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output folder (defaults to paths.output_dir)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Output format (see `otterpack formats`)")
	cmd.Flags().BoolVar(&flags.normalize, "normalize", false, "Apply dynamic loudness normalization")
	cmd.Flags().BoolVar(&flags.mix, "mix", false, "Mix all tracks into a single file")
	cmd.Flags().BoolVar(&flags.dev, "dev", false, "Read resources from the development folder")
	cmd.Flags().BoolVar(&flags.showEncoderOutput, "show-encoder-output", false, "Stream encoder output to stderr")
	return cmd
}

func runConvert(cmd *cobra.Command, ctx *commandContext, flags convertFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	changed := cmd.Flags().Changed
	if flags.dev {
		cfg.Resources.DevMode = true
	}
	formatName := cfg.Conversion.Format
	if f := strings.TrimSpace(flags.format); f != "" {
		formatName = f
	}
	format, err := convert.LookupFormat(formatName)
	if err != nil {
		return err
	}
	normalize := cfg.Conversion.Normalize
	if changed("normalize") {
		normalize = flags.normalize
	}
	mix := cfg.Conversion.Mix
	if changed("mix") {
		mix = flags.mix
	}
	showOutput := cfg.Conversion.ShowEncoderOutput
	if changed("show-encoder-output") {
		showOutput = flags.showEncoderOutput
	}
	outputRoot, err := ctx.outputRoot(flags.output, cfg.Resources.DevMode)
	if err != nil {
		return err
	}

	logger, err := ctx.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	store, err := ctx.openHistory()
	if err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	runnerOpts := []ffmpeg.Option{ffmpeg.WithLogger(logger)}
	if showOutput {
		runnerOpts = append(runnerOpts, ffmpeg.WithOutput(cmd.ErrOrStderr()))
	}
	session, err := pipeline.New(pipeline.Options{
		Config:  cfg,
		Logger:  logger,
		Runner:  ffmpeg.NewRunner(runnerOpts...),
		History: store,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to clean up resources", logging.Error(err))
		}
	}()

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logging.WithRunID(runCtx, session.RunID())

	if err := session.Prepare(runCtx); err != nil {
		return err
	}

	events := session.Convert(runCtx, convert.Request{
		OutputRoot: outputRoot,
		Format:     format,
		Normalize:  normalize,
		Mix:        mix,
	})
	if err := followConversion(events, newProgressPrinter(cmd.OutOrStdout()), session.Wait); err != nil {
		return err
	}

	result, err := session.Result()
	if err != nil {
		return err
	}
	printSummary(cmd, result, format)
	return nil
}

// followConversion renders events while wait blocks on the conversion
// goroutine. It returns the error carried by a Failed event, or an error when
// the stream closes without a terminal event.
func followConversion(events <-chan convert.Event, printer *progressPrinter, wait func()) error {
	var g errgroup.Group
	g.Go(func() error {
		last := printer.consume(events)
		switch {
		case last.Kind == convert.EventFailed:
			return last.Err
		case !last.Terminal():
			return errors.New("conversion stream closed without a result")
		}
		return nil
	})
	g.Go(func() error {
		wait()
		return nil
	})
	return g.Wait()
}

func printSummary(cmd *cobra.Command, result convert.Result, format convert.Format) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Converted %d input(s) to %s in %s\n", len(result.Inputs), format.DisplayName, result.OutputDir)
	if result.Manifest != "" {
		fmt.Fprintf(out, "Project: %s\n", result.Manifest)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"otterpack/internal/failures"
	"otterpack/internal/logging"
	"otterpack/internal/preflight"
	"otterpack/internal/resources"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var output string
	var dev bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that resources, the encoder, and output paths are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if dev {
				cfg.Resources.DevMode = true
			}
			outputRoot, err := ctx.outputRoot(output, cfg.Resources.DevMode)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			fmt.Fprintln(out, renderSectionHeader("otterpack doctor", colorize))

			res := cfg.Resources
			var origin resources.Origin
			resolved, setupErr := resources.Setup(cmd.Context(), resources.SetupOptions{
				Locate: resources.LocateOptions{
					DevMode:   res.DevMode,
					DevFolder: res.DevFolder,
					Binary:    res.Binary,
					Window:    cfg.SearchWindowBytes(),
				},
				Binary:    res.Binary,
				Logger:    logger,
				OnLocated: func(o resources.Origin) { origin = o },
			})
			resourcePath := ""
			if setupErr != nil {
				fmt.Fprintln(out, renderStatusLine("Resources", statusError, failures.Kind(setupErr)+": "+setupErr.Error(), colorize))
			} else {
				defer func() {
					if err := resolved.Release(); err != nil {
						logger.Warn("failed to clean up resources", logging.Error(err))
					}
				}()
				resourcePath = resolved.Path
				fmt.Fprintln(out, renderStatusLine("Resources", statusOK, origin.String(), colorize))
			}

			results := preflight.RunAll(cmd.Context(), cfg, resourcePath, outputRoot)
			for _, r := range results {
				fmt.Fprintln(out, renderCheck(r, colorize))
			}
			failed := preflight.Failed(results)
			if setupErr != nil {
				failed++
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output folder to check")
	cmd.Flags().BoolVar(&dev, "dev", false, "Check the development folder instead of the bundled archive")
	return cmd
}

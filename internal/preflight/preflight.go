package preflight

import (
	"context"
	"path/filepath"

	"otterpack/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed counts the results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}

// RunAll executes the preflight checks for cfg. resourcePath is the prepared
// resource directory; when empty the encoder checks are skipped.
func RunAll(ctx context.Context, cfg *config.Config, resourcePath, outputRoot string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckOutputRoot("Output directory", outputRoot),
	}
	if resourcePath == "" {
		return results
	}

	binary := CheckBinary("Encoder binary", filepath.Join(resourcePath, cfg.Resources.Binary))
	results = append(results, binary)
	if binary.Passed {
		results = append(results, CheckEncoderVersion(ctx, "Encoder version", filepath.Join(resourcePath, cfg.Resources.Binary)))
	}
	return results
}

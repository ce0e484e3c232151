package convert

import (
	"os"
	"path/filepath"
	"strings"

	"otterpack/internal/failures"
	"otterpack/internal/project"
)

// MixedOutputLabel is the Processing filename reported for a mix run.
const MixedOutputLabel = "Mixed output"

// Request describes one conversion run.
type Request struct {
	ResourcePath string
	OutputRoot   string
	Binary       string
	Format       Format
	Normalize    bool
	Mix          bool
}

// OutputDir returns where encoded files are written: OutputRoot, or its
// data folder for project formats.
func (r Request) OutputDir() string {
	if r.Format.Project {
		return filepath.Join(r.OutputRoot, project.DataDir)
	}
	return r.OutputRoot
}

// Invocation is one planned encoder execution.
type Invocation struct {
	// Label is the name reported in Processing events.
	Label  string
	Args   []string
	Output string
}

// ListInputs returns the names of regular *.flac files directly under dir,
// sorted by name. The extension match ignores case.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, failures.Wrap(failures.ErrValidation, "convert", "list inputs", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".flac") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Plan builds the invocation list for inputs, which are names under
// req.ResourcePath.
func Plan(req Request, inputs []string) []Invocation {
	outDir := req.OutputDir()
	if req.Mix && len(inputs) > 0 {
		paths := make([]string, len(inputs))
		for i, name := range inputs {
			paths[i] = filepath.Join(req.ResourcePath, name)
		}
		output := filepath.Join(outDir, "mixed."+req.Format.Extension)
		return []Invocation{{
			Label:  MixedOutputLabel,
			Args:   MixArgs(paths, output, req.Format, req.Normalize),
			Output: output,
		}}
	}

	plan := make([]Invocation, 0, len(inputs))
	for _, name := range inputs {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		output := filepath.Join(outDir, stem+"."+req.Format.Extension)
		plan = append(plan, Invocation{
			Label:  name,
			Args:   FileArgs(filepath.Join(req.ResourcePath, name), output, req.Format, req.Normalize),
			Output: output,
		})
	}
	return plan
}

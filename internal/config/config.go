package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"otterpack/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
}

// Resources controls where the bundled encoder and captures are found.
type Resources struct {
	DevMode         bool   `toml:"dev_mode"`
	DevFolder       string `toml:"dev_folder"`
	Binary          string `toml:"binary"`
	SearchWindowMiB int    `toml:"search_window_mib"`
}

// Conversion holds the default selections for a conversion run.
type Conversion struct {
	Format            string `toml:"format"`
	Normalize         bool   `toml:"normalize"`
	Mix               bool   `toml:"mix"`
	ShowEncoderOutput bool   `toml:"show_encoder_output"`
}

// History controls the run history database.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File enables mirroring log output to <log_dir>/otterpack.log.
	File bool `toml:"file"`
}

// Config encapsulates all configuration values for otterpack.
//
// Configuration sections by subsystem:
//   - Paths: output, state, and log directories
//   - Resources: dev folder, bundled binary name, archive search window
//   - Conversion: default format and filter selections
//   - History: run history database
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Resources  Resources  `toml:"resources"`
	Conversion Conversion `toml:"conversion"`
	History    History    `toml:"history"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/otterpack/config.toml")
}

// Load reads the configuration at path, or at the first existing candidate
// location when path is empty, then normalizes and validates it. It returns
// the resolved file path and whether that file existed; a missing file
// yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, resolved, true, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}
	return &cfg, resolved, exists, nil
}

// projectConfigName is looked up in the working directory after the user config.
const projectConfigName = "otterpack.toml"

// resolveConfigPath picks the explicit path, else the first existing file among
// the user config and the project config. When nothing exists the user config
// location is reported.
func resolveConfigPath(path string) (string, bool, error) {
	var candidates []string
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		candidates = []string{expanded}
	} else {
		user, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		project, err := filepath.Abs(projectConfigName)
		if err != nil {
			return "", false, fmt.Errorf("resolve %s: %w", projectConfigName, err)
		}
		candidates = []string{user, project}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config %s: %w", candidate, err)
		}
	}
	return candidates[0], false, nil
}

// EnsureDirectories creates the state and log directories. The output
// directory is created by the conversion run itself.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockDir returns the directory holding per-output run locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

// SearchWindowBytes returns the embedded archive search window in bytes.
func (c *Config) SearchWindowBytes() int64 {
	return int64(c.Resources.SearchWindowMiB) << 20
}

// DefaultBinary returns the platform-specific encoder executable name.
func DefaultBinary() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// expandPath replaces a leading "~" with the home directory and makes the
// result absolute. Empty input stays empty.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(value, "~"); ok && (rest == "" || os.IsPathSeparator(rest[0]) || rest[0] == '/') {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %q: %w", value, err)
		}
		value = filepath.Join(home, strings.TrimLeft(rest, `/\`))
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("make %q absolute: %w", value, err)
	}
	return abs, nil
}

// ExpandPath applies the same "~" expansion used for configured paths.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

// DefaultOutputDir derives the output folder used when paths.output_dir is
// empty: a folder named after the running executable in the working
// directory, or "out" in dev mode.
func DefaultOutputDir(devMode bool) string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	folder := "otterpack-out"
	if devMode {
		folder = "out"
	} else if exe, err := os.Executable(); err == nil {
		base := filepath.Base(exe)
		if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
			folder = stem
		}
	}
	return filepath.Join(cwd, folder)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

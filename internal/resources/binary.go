package resources

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"otterpack/internal/failures"
)

// DefaultBinary is the encoder executable name for the current platform.
func DefaultBinary() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// RequireBinary checks that binary exists directly under dir and returns its
// path. When markExecutable is set, a missing execute bit is added on Unix so
// archives built on Windows still yield a runnable encoder. Only pass it for
// directories the caller owns.
func RequireBinary(dir, binary string, markExecutable bool) (string, error) {
	path := filepath.Join(dir, binary)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		msg := fmt.Sprintf("%s not found in resources (checked %s)", binary, path)
		return "", failures.Wrap(failures.ErrValidation, "validate", "required binary", msg, nil)
	}
	if markExecutable && runtime.GOOS != "windows" && info.Mode().Perm()&0o100 == 0 {
		if err := os.Chmod(path, info.Mode().Perm()|0o755); err != nil {
			return "", failures.Wrap(failures.ErrValidation, "validate", "mark executable", path, err)
		}
	}
	return path, nil
}

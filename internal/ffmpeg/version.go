package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Version runs "binary -version" and returns the first output line, for
// example "ffmpeg version 6.1.1 Copyright ...".
func Version(ctx context.Context, binary string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "", fmt.Errorf("ffmpeg version: empty binary path")
	}
	cmd := exec.CommandContext(ctx, binary, "-hide_banner", "-version") //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg version: %w: %s", err, strings.TrimSpace(string(output)))
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(first), nil
}

package pipeline

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/zeebo/blake3"

	"otterpack/internal/failures"
)

// outputLock guards one output root across processes.
type outputLock struct {
	path string
	lock *flock.Flock
}

// lockPathFor derives a stable lock file name from the absolute output root.
func lockPathFor(lockDir, outputRoot string) (string, error) {
	abs, err := filepath.Abs(outputRoot)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256([]byte(abs))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:12])+".lock"), nil
}

func acquireOutputLock(lockDir, outputRoot string) (*outputLock, error) {
	path, err := lockPathFor(lockDir, outputRoot)
	if err != nil {
		return nil, failures.Wrap(failures.ErrValidation, "convert", "resolve output root", outputRoot, err)
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, failures.Wrap(failures.ErrValidation, "convert", "create lock dir", lockDir, err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, failures.Wrap(failures.ErrValidation, "convert", "acquire output lock", path, err)
	}
	if !ok {
		msg := fmt.Sprintf("another otterpack run is writing to %s", outputRoot)
		return nil, failures.Wrap(failures.ErrValidation, "convert", "acquire output lock", msg, nil)
	}
	return &outputLock{path: path, lock: lock}, nil
}

func (l *outputLock) release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

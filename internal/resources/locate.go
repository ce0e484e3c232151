package resources

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"otterpack/internal/failures"
)

// Signature is the zip local file header magic marking the start of a bundled archive.
var Signature = []byte{'P', 'K', 0x03, 0x04}

// DefaultSearchWindow bounds how much of the executable is scanned for Signature.
const DefaultSearchWindow int64 = 10 << 20

const scanChunk = 64 << 10

// LocateOptions controls resource discovery.
type LocateOptions struct {
	DevMode   bool
	DevFolder string
	// Binary is named in the dev mode failure message.
	Binary string
	// Executable overrides the container path; defaults to os.Executable.
	Executable string
	Window     int64
}

// errNoArchive marks a scan that completed without finding Signature.
var errNoArchive = errors.New("this executable does not have a bundled archive")

// Locate returns the dev folder when dev mode is on and the folder exists,
// otherwise the archive appended to the executable. In dev mode a failed
// scan reports the missing dev folder. No archive validation happens here.
func Locate(opts LocateOptions) (Origin, error) {
	if opts.DevMode {
		if origin, ok, err := devFolderOrigin(opts.DevFolder); err != nil || ok {
			return origin, err
		}
	}

	exe := opts.Executable
	if exe == "" {
		path, err := os.Executable()
		if err != nil {
			return Origin{}, failures.Wrap(failures.ErrLocator, "locate", "resolve executable", "cannot determine running executable", err)
		}
		exe = path
	}
	origin, err := LocateIn(exe, opts.Window)
	if opts.DevMode && errors.Is(err, errNoArchive) {
		return Origin{}, devFolderMissing(opts)
	}
	return origin, err
}

func devFolderPath(folder string) (string, error) {
	if folder == "" {
		folder = "_otterpack"
	}
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", failures.Wrap(failures.ErrLocator, "locate", "resolve dev folder", folder, err)
	}
	return abs, nil
}

func devFolderOrigin(folder string) (Origin, bool, error) {
	abs, err := devFolderPath(folder)
	if err != nil {
		return Origin{}, false, err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return DevFolder(abs), true, nil
	}
	return Origin{}, false, nil
}

func devFolderMissing(opts LocateOptions) error {
	abs, err := devFolderPath(opts.DevFolder)
	if err != nil {
		return err
	}
	binary := opts.Binary
	if binary == "" {
		binary = DefaultBinary()
	}
	msg := fmt.Sprintf("dev folder %s not found and no bundled archive present; create it and place %s in it", abs, binary)
	return failures.Wrap(failures.ErrLocator, "locate", "dev folder", msg, nil)
}

// LocateIn scans the first window bytes of path for Signature. A window of
// zero or less uses DefaultSearchWindow.
func LocateIn(path string, window int64) (Origin, error) {
	if window <= 0 {
		window = DefaultSearchWindow
	}
	file, err := os.Open(path)
	if err != nil {
		return Origin{}, failures.Wrap(failures.ErrLocator, "locate", "open executable", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Origin{}, failures.Wrap(failures.ErrLocator, "locate", "stat executable", path, err)
	}
	size := info.Size()

	offset, found, err := findSignature(file, min(size, window))
	if err != nil {
		return Origin{}, failures.Wrap(failures.ErrLocator, "locate", "scan executable", path, err)
	}
	if !found {
		return Origin{}, failures.Wrap(failures.ErrLocator, "locate", "scan executable", path, errNoArchive)
	}
	return EmbeddedArchive(path, offset, size-offset), nil
}

// findSignature reads at most limit bytes from r and reports the offset of the
// first Signature that lies entirely within them. One buffer is reused; the
// tail of each chunk is carried over so matches spanning chunks are found.
func findSignature(r io.Reader, limit int64) (int64, bool, error) {
	keep := len(Signature) - 1
	buf := make([]byte, keep+scanChunk)
	carry := 0
	var base int64
	for remaining := limit; remaining > 0; {
		want := min(int64(scanChunk), remaining)
		n, err := io.ReadFull(r, buf[carry:carry+int(want)])
		total := carry + n
		if idx := bytes.Index(buf[:total], Signature); idx >= 0 {
			return base + int64(idx), true, nil
		}
		remaining -= int64(n)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0, false, err
		}
		tail := min(keep, total)
		copy(buf, buf[total-tail:total])
		base += int64(total - tail)
		carry = tail
	}
	return 0, false, nil
}

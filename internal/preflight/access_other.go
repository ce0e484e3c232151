//go:build !unix

package preflight

import "os"

// dirAccess probes writability by creating and removing a temp file.
func dirAccess(path string) error {
	f, err := os.CreateTemp(path, ".otterpack-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func execAccess(string) error {
	return nil
}

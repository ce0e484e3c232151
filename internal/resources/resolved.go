package resources

import (
	"fmt"
	"os"
	"sync"
)

// Resolved is a ready resource directory. Extracted archives own their
// directory and remove it on Release; dev folders are borrowed.
type Resolved struct {
	owner  *tempDir
	Path   string
	Digest string
}

// Owned reports whether Release deletes Path.
func (r *Resolved) Owned() bool {
	return r != nil && r.owner != nil
}

// Release removes an owned directory tree. It is safe to call more than once
// and on dev folder resources.
func (r *Resolved) Release() error {
	if r == nil || r.owner == nil {
		return nil
	}
	return r.owner.remove()
}

type tempDir struct {
	path string
	once sync.Once
	err  error
}

func (d *tempDir) remove() error {
	d.once.Do(func() {
		if err := os.RemoveAll(d.path); err != nil {
			d.err = fmt.Errorf("remove %s: %w", d.path, err)
		}
	})
	return d.err
}

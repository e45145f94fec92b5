package usecase

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// workspace hands out paths for run intermediates and removes them all at
// the end of the run.
type workspace struct {
	dir string

	mu     sync.Mutex
	files  []string
	images []string
}

func newWorkspace(dir string) (*workspace, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &workspace{dir: dir}, nil
}

func (w *workspace) file(name string) string {
	p := filepath.Join(w.dir, name)
	w.mu.Lock()
	w.files = append(w.files, p)
	w.mu.Unlock()
	return p
}

func (w *workspace) image(path string) {
	w.mu.Lock()
	w.images = append(w.images, path)
	w.mu.Unlock()
}

// cleanup removes every tracked intermediate and the work dir; scene images
// only when purgeImages is set. Removal failures are returned, not fatal.
func (w *workspace) cleanup(purgeImages bool) []error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	remove := func(p string) {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	for _, p := range w.files {
		remove(p)
	}
	if purgeImages {
		for _, p := range w.images {
			remove(p)
		}
	}
	if err := os.RemoveAll(w.dir); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// Package workspace provides the scoped transient storage area owned by a
// single analysis run: the uploaded document and its rasterized pages live
// here and nowhere else, and the whole area is removed on every exit path.
package workspace

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Workspace is a private temporary directory for one run. No cross-request
// sharing or locking is needed because each run owns a disjoint directory.
type Workspace struct {
	dir string
}

// New creates a fresh workspace directory.
func New(runID string) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "analyst-"+runID+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace dir: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string {
	return w.dir
}

// SaveUpload streams the uploaded document into the workspace and returns its
// path. Only the base of filename is used; the upload never escapes the
// workspace directory.
func (w *Workspace) SaveUpload(filename string, r io.Reader) (string, error) {
	dest := filepath.Join(w.dir, filepath.Base(filename))
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return dest, nil
}

// PagePath returns the workspace path for a rasterized page image. Pages are
// numbered from 1 on disk to match the source document.
func (w *Workspace) PagePath(pageNumber int) string {
	return filepath.Join(w.dir, fmt.Sprintf("page_%d.png", pageNumber))
}

// Cleanup removes the whole workspace. Safe to call more than once; callers
// defer it at acquisition so release happens on every exit path.
func (w *Workspace) Cleanup() {
	if w.dir == "" {
		return
	}
	if err := os.RemoveAll(w.dir); err != nil {
		slog.Error("Failed to remove workspace directory", "path", w.dir, "error", err)
		return
	}
	w.dir = ""
}

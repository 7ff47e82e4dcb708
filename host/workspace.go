package host

import (
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultMarkers name the entries that identify a workspace root.
var DefaultMarkers = []string{".git", ".hg", ".svn", ".jj"}

// DirWorkspace implements [lang.WorkspaceResolver] for checkouts. The
// workspace of a path is its nearest ancestor directory (or the path
// itself) containing one of Markers. The workspace name is that
// directory's base name; the owner is the base name of its parent, as
// in ~/src/<owner>/<name>.
type DirWorkspace struct {
	Markers []string
}

// Root returns the workspace root directory containing path.
func (w DirWorkspace) Root(path string) (string, error) {
	markers := w.Markers
	if len(markers) == 0 {
		markers = DefaultMarkers
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return "", ErrNoWorkspace.Wrap(err).With(slog.String("path", path))
	}

	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		for _, m := range markers {
			if _, err := os.Lstat(filepath.Join(dir, m)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoWorkspace.With(slog.String("path", path))
		}

		dir = parent
	}
}

// WorkspaceName implements [lang.WorkspaceResolver].
func (w DirWorkspace) WorkspaceName(path string) (string, error) {
	root, err := w.Root(path)
	if err != nil {
		return "", err
	}

	return filepath.Base(root), nil
}

// WorkspaceOwner implements [lang.WorkspaceResolver].
func (w DirWorkspace) WorkspaceOwner(path string) (string, error) {
	root, err := w.Root(path)
	if err != nil {
		return "", err
	}

	return filepath.Base(filepath.Dir(root)), nil
}

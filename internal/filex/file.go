package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureParentDir creates the directory that will hold path (a database or
// log file) and returns path unchanged. In-memory SQLite DSNs are left alone.
func EnsureParentDir(path string) (string, error) {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return path, nil
}

// DefaultDataDir is where the journal keeps its files when nothing else is
// configured: $XDG_DATA_HOME/dailygrace or ~/.local/share/dailygrace.
func DefaultDataDir(app string) string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, app)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return app
	}
	return filepath.Join(home, ".local", "share", app)
}

package ui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
)

// offerablePath resolves path and checks that it names a regular file.
func offerablePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return abs, nil
}

// localFiles keeps the URIs that point at regular local files, so several
// files dropped on the window can be offered at once.
func localFiles(uris []fyne.URI) []string {
	paths := make([]string, 0, len(uris))
	for _, u := range uris {
		if u.Scheme() != "file" {
			slog.Warn("Skip non-local file", "uri", u.String())
			continue
		}
		p, err := offerablePath(u.Path())
		if err != nil {
			slog.Warn("Skip file", "uri", u.String(), "error", err)
			continue
		}
		paths = append(paths, p)
	}
	return paths
}

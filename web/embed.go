// Package web holds the page template and static assets served to peers.
package web

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed index.html static
var bundle embed.FS

// Open returns the bundled assets, or the directory dir when it is set so the
// page can be edited without rebuilding.
func Open(dir string) (fs.FS, error) {
	if dir == "" {
		return bundle, nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrInvalid}
	}
	return os.DirFS(dir), nil
}

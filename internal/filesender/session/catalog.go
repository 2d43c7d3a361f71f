package session

import (
	"fmt"
	"path/filepath"

	fserrors "github.com/Flakebi/FileSender/internal/filesender/errors"
	"github.com/Flakebi/FileSender/internal/models"
)

const unknownName = "unknown"

// Catalog is the ordered list of offered files. Insertion order defines the
// index used in download URLs; removing an entry shifts later ones down.
// It is not safe for concurrent use, Session guards it.
type Catalog struct {
	paths []string
}

// DisplayName returns the base name of path, or "unknown" when there is none.
func DisplayName(path string) string {
	name := filepath.Base(path)
	if name == "" || name == "." || name == string(filepath.Separator) || name == ".." {
		return unknownName
	}
	return name
}

func (c *Catalog) Append(paths ...string) {
	c.paths = append(c.paths, paths...)
}

func (c *Catalog) Get(index int) (models.DownloadEntry, error) {
	if index < 0 || index >= len(c.paths) {
		return models.DownloadEntry{}, fmt.Errorf("%w: %d", fserrors.ErrDownloadIndexInvalid, index)
	}
	path := c.paths[index]
	return models.DownloadEntry{Index: index, Name: DisplayName(path), Path: path}, nil
}

func (c *Catalog) RemoveAt(index int) (string, error) {
	if index < 0 || index >= len(c.paths) {
		return "", fmt.Errorf("%w: %d", fserrors.ErrDownloadIndexInvalid, index)
	}
	path := c.paths[index]
	c.paths = append(c.paths[:index], c.paths[index+1:]...)
	return path, nil
}

// Entries returns a copy of every entry.
func (c *Catalog) Entries() []models.DownloadEntry {
	entries := make([]models.DownloadEntry, len(c.paths))
	for i, p := range c.paths {
		entries[i] = models.DownloadEntry{Index: i, Name: DisplayName(p), Path: p}
	}
	return entries
}

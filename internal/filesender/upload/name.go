package upload

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '-', r == '_':
		return true
	}
	return false
}

// ValidName reports whether name only uses [A-Za-z0-9._-] and is usable as a
// file name in the destination directory.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for _, r := range name {
		if !allowedRune(r) {
			return false
		}
	}
	return true
}

// SanitizeName keeps candidate when it is valid and otherwise replaces it
// with fallback as a whole. Nothing is stripped or escaped.
func SanitizeName(candidate, fallback string) string {
	if !ValidName(candidate) {
		return fallback
	}
	return candidate
}

// freePath probes name, 0-name, 1-name, ... inside dir and returns the first
// path that does not exist yet. Two uploads racing on the same name can both
// pick the same path; the later rename wins.
func freePath(dir, name string) (string, error) {
	dest := filepath.Join(dir, name)
	for i := 0; ; i++ {
		_, err := os.Lstat(dest)
		if errors.Is(err, fs.ErrNotExist) {
			return dest, nil
		}
		if err != nil {
			return "", err
		}
		dest = filepath.Join(dir, fmt.Sprintf("%d-%s", i, name))
	}
}

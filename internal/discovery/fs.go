package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// fileExists reports whether name exists and is not a directory.
func fileExists(fsys afero.Fs, name string) (bool, error) {
	info, err := fsys.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", name, err)
	}
	return !info.IsDir(), nil
}

// dirExists reports whether name exists and is a directory.
func dirExists(fsys afero.Fs, name string) (bool, error) {
	ok, err := afero.DirExists(fsys, name)
	if err != nil {
		return false, fmt.Errorf("checking directory %s: %w", name, err)
	}
	return ok, nil
}

// listFiles returns the regular files directly inside dir whose names end
// in ext, sorted lexicographically.
func listFiles(fsys afero.Fs, dir, ext string) ([]string, error) {
	pattern := path.Join(dir, "*"+ext)
	matches, err := doublestar.Glob(afero.NewIOFS(fsys), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/wudi/schemadiff/internal/errors"
	"github.com/wudi/schemadiff/internal/schema"
)

// Discover pairs the files matching pattern under oldRoot with the files at
// the same relative path under newRoot. Files present on one side only,
// and files whose extension maps to no format, are skipped. Versions are
// labelled with the base name of their root.
func Discover(oldRoot, newRoot, pattern string) ([]Pair, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	oldFiles, err := glob(oldRoot, pattern)
	if err != nil {
		return nil, err
	}
	newFiles, err := glob(newRoot, pattern)
	if err != nil {
		return nil, err
	}

	oldVersion, newVersion := filepath.Base(oldRoot), filepath.Base(newRoot)
	var pairs []Pair
	for _, rel := range oldFiles {
		if _, ok := slices.BinarySearch(newFiles, rel); !ok {
			continue
		}
		format, err := schema.FormatFromPath(rel)
		if err != nil {
			continue
		}

		oldContent, err := readFile(oldRoot, rel)
		if err != nil {
			return nil, err
		}
		newContent, err := readFile(newRoot, rel)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{
			Name: rel,
			Old:  schema.New(format, oldContent, oldVersion),
			New:  schema.New(format, newContent, newVersion),
		})
	}
	return pairs, nil
}

func glob(root, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "failed to list "+root)
	}
	slices.Sort(matches)
	return matches, nil
}

func readFile(root, rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return "", errors.Wrap(err, errors.KindIO, "failed to read schema file")
	}
	return string(data), nil
}

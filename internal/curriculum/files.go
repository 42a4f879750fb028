package curriculum

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Extension is the file extension of curriculum files.
const Extension = ".hcl"

// findFiles expands paths into a sorted, de-duplicated list of curriculum
// files. Directories are walked recursively. Missing paths are an error.
func findFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(path))
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == Extension {
				add(filepath.Clean(p))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}

	slices.Sort(files)
	return files, nil
}

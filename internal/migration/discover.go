package migration

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/example/schemaflow/internal/utils"
)

// File is a migration candidate discovered on disk. It lives for a single
// run; Ran flips to true only after the file executes successfully.
type File struct {
	Name string
	Path string
	Ran  bool
}

// Discover lists the migration files directly inside dir. Subdirectories are
// not descended into. The result is sorted lexicographically by file name,
// which is the execution order contract of the engine.
func Discover(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, utils.WrapDiscoveryError(dir, err)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, File{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

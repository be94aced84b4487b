package skills

import (
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Resources lists the bundled files of a skill, relative to its directory.
type Resources struct {
	Scripts    []string `json:"scripts"`
	References []string `json:"references"`
	Assets     []string `json:"assets"`
}

// Resources enumerates the scripts, references, and assets bundled with the
// skill. Missing subdirectories yield empty slices, not errors.
func (s *Skill) Resources() (*Resources, error) {
	fsys := os.DirFS(s.Directory)

	scripts, err := globAll(fsys, "scripts/**")
	if err != nil {
		return nil, err
	}
	references, err := globAll(fsys, "references/**")
	if err != nil {
		return nil, err
	}
	assets, err := globAll(fsys, "assets/**")
	if err != nil {
		return nil, err
	}

	return &Resources{
		Scripts:    scripts,
		References: references,
		Assets:     assets,
	}, nil
}

// globAll matches the pattern against the skill filesystem and returns the
// regular files, sorted.
func globAll(fsys fs.FS, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, match := range matches {
		info, err := fs.Stat(fsys, match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, match)
	}
	sort.Strings(files)
	return files, nil
}

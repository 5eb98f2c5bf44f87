package workspace

import (
	"fmt"

	"github.com/gobwas/glob"
)

// globFiles filters files by the given glob patterns, minus excludes.
// Patterns are compiled with '/' as the separator. Files are yielded in
// input order, which keeps downstream content hashing deterministic.
func globFiles(files []FileData, globs []string, exclude []string) ([]FileData, error) {
	includes, err := compileGlobs(globs)
	if err != nil {
		return nil, err
	}
	excludes, err := compileGlobs(exclude)
	if err != nil {
		return nil, err
	}

	var matched []FileData
	for _, f := range files {
		if !matchAny(includes, f.File) {
			continue
		}
		if matchAny(excludes, f.File) {
			continue
		}
		matched = append(matched, f)
	}
	return matched, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile glob %q: %w", p, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob returns the slash-separated paths, relative to base, of the regular
// files matching any include pattern and no exclude pattern. Patterns use
// doublestar syntax (`**` crosses directories). Files and directories whose
// name starts with a dot are only returned when dot is true.
func Glob(base string, includes, excludes []string, dot bool) ([]string, error) {
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source directory %s is not a directory", base)
	}

	for _, pattern := range append(append([]string{}, includes...), excludes...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}

	fsys := os.DirFS(base)
	found := make(map[string]struct{})
	for _, pattern := range includes {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			found[m] = struct{}{}
		}
	}

	out := make([]string, 0, len(found))
	for m := range found {
		if !dot && hasDotSegment(m) {
			continue
		}
		excluded, err := MatchAny(excludes, m)
		if err != nil {
			return nil, err
		}
		if !excluded {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// MatchAny reports whether the slash-separated path matches one of the patterns.
func MatchAny(patterns []string, path string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func hasDotSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// Within reports whether path is dir or lies below it. Both are cleaned
// before comparison; no symlinks are resolved.
func Within(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Overlaps reports whether one path contains the other.
func Overlaps(a, b string) bool {
	return Within(a, b) || Within(b, a)
}

// Selected reports whether path is selected by an optional include list: an
// empty list selects everything.
func Selected(includes []string, path string) (bool, error) {
	if len(includes) == 0 {
		return true, nil
	}
	return MatchAny(includes, path)
}

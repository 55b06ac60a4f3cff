package watch

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which files the watcher reports.
type Filter interface {
	// Matches returns true if the file at path should be mirrored.
	Matches(path string) bool
}

// ExtensionFilter matches files by extension on their base name, ignoring case.
type ExtensionFilter struct {
	pattern string
}

// NewExtensionFilter creates a filter for ext, given with or without the dot.
// An empty extension matches every file.
func NewExtensionFilter(ext string) *ExtensionFilter {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		return &ExtensionFilter{pattern: "*"}
	}

	return &ExtensionFilter{pattern: "*." + ext}
}

// Pattern returns the glob the filter applies to base names.
func (f *ExtensionFilter) Pattern() string {
	return f.pattern
}

// Matches reports whether the base name of path has the filter's extension.
func (f *ExtensionFilter) Matches(path string) bool {
	name := strings.ToLower(filepath.Base(path))

	matched, err := doublestar.Match(f.pattern, name)
	if err != nil {
		// An invalid pattern matches nothing.
		return false
	}

	return matched
}

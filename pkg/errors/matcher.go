package errors

import "strings"

// PatternMatcher matches error messages to categories using string patterns.
type PatternMatcher interface {
	Match(errorMsg string) ErrorCategory
}

type categoryPatterns struct {
	category ErrorCategory
	patterns []string
}

// NewPatternMatcher creates a PatternMatcher with the built-in patterns.
// Categories are tried in order; the first containing match wins.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		rules: []categoryPatterns{
			{CategoryConflict, []string{"conflict"}},
			{CategoryDuplicate, []string{"duplicate", "more than one file"}},
			{CategoryLocked, []string{
				"being used by another process",
				"sharing violation",
				"resource temporarily unavailable",
				"text file busy",
			}},
			{CategoryUnavailable, []string{
				"not ready",
				"no such device",
				"connection refused",
				"no route to host",
				"i/o timeout",
				"device not configured",
			}},
			{CategoryPermission, []string{
				"permission denied",
				"access denied",
				"access is denied",
				"operation not permitted",
				"read-only file system",
			}},
			{CategoryDiskSpace, []string{
				"no space left on device",
				"disk full",
				"quota exceeded",
			}},
			{CategoryPath, []string{
				"no such file or directory",
				"cannot find the file",
				"cannot find the path",
				"file does not exist",
			}},
			{CategoryCopy, []string{
				"short write",
				"input/output error",
				"i/o error",
			}},
		},
	}
}

type patternMatcher struct {
	rules []categoryPatterns
}

// Match returns the first category whose patterns occur in errorMsg, ignoring case.
func (m *patternMatcher) Match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	for _, rule := range m.rules {
		for _, pattern := range rule.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return rule.category
			}
		}
	}

	return CategoryUnknown
}

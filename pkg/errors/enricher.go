package errors

import (
	"errors"
	"regexp"
	"strings"
)

// Enricher enriches standard errors with actionable suggestions.
type Enricher interface {
	Enrich(err error, affectedPath string) error
}

// NewEnricher creates an Enricher with the default matcher and suggestions.
func NewEnricher() Enricher {
	return &enricher{
		matcher:   NewPatternMatcher(),
		generator: NewSuggestionGenerator(),
	}
}

//nolint:gochecknoglobals // Compiled once and shared by every enricher
var pathExtractionPatterns = []*regexp.Regexp{
	// Unix paths, absolute or relative
	regexp.MustCompile(`\b\w+\s+([./][^\s:]+):`),
	// Windows drive paths with either separator
	regexp.MustCompile(`\b\w+\s+([A-Za-z]:[\\/][^\s:]*):`),
	// UNC shares
	regexp.MustCompile(`\b\w+\s+(\\\\[^\s:]+):`),
}

type enricher struct {
	matcher   PatternMatcher
	generator SuggestionGenerator
}

// Enrich categorizes err and attaches suggestions. Errors that are already
// actionable are returned unchanged; nil stays nil. When affectedPath is
// empty a path is extracted from the message where possible.
func (e *enricher) Enrich(err error, affectedPath string) error {
	if err == nil {
		return nil
	}

	var actionableErr ActionableError
	if errors.As(err, &actionableErr) {
		return actionableErr
	}

	errMsg := err.Error()

	if affectedPath == "" {
		affectedPath = extractPath(errMsg)
	}

	category := e.matcher.Match(errMsg)

	return NewActionableError(
		err,
		category,
		e.generator.Generate(category, affectedPath),
		affectedPath,
	)
}

// extractPath pulls the path out of messages shaped like
// "open /media/sdcard/part.gcode: permission denied" or
// "stat H:\firmware.cur: The system cannot find the file specified".
func extractPath(errorMsg string) string {
	for _, pattern := range pathExtractionPatterns {
		if matches := pattern.FindStringSubmatch(errorMsg); len(matches) > 1 {
			if path := strings.TrimSpace(matches[1]); path != "" {
				return path
			}
		}
	}

	return ""
}

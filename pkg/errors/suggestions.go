package errors

import "fmt"

// SuggestionGenerator generates actionable suggestions based on error category.
type SuggestionGenerator interface {
	Generate(category ErrorCategory, affectedPath string) []string
}

// NewSuggestionGenerator creates a new SuggestionGenerator.
func NewSuggestionGenerator() SuggestionGenerator {
	return &suggestionGenerator{}
}

type suggestionGenerator struct{}

// Generate returns actionable suggestions based on the error category and affected path.
func (g *suggestionGenerator) Generate(category ErrorCategory, affectedPath string) []string {
	switch category {
	case CategoryConflict:
		return g.conflict(affectedPath)
	case CategoryDuplicate:
		return g.duplicate(affectedPath)
	case CategoryLocked:
		return g.locked(affectedPath)
	case CategoryUnavailable:
		return g.unavailable()
	case CategoryPermission:
		return g.permission(affectedPath)
	case CategoryDiskSpace:
		return g.diskSpace()
	case CategoryPath:
		return g.missingPath(affectedPath)
	case CategoryCopy:
		return g.copyFailure()
	case CategoryUnknown:
		return g.unknown(affectedPath)
	default:
		return g.unknown(affectedPath)
	}
}

func (g *suggestionGenerator) conflict(path string) []string {
	suggestions := []string{
		"The copy on the printer is newer than the source; it was edited on the card",
	}

	if path != "" {
		suggestions = append(suggestions, "Compare the two versions and keep the one you want: "+path)
	}

	return append(suggestions,
		"Touch or re-export the source file to make it win",
		"Use --policy different to always overwrite differing files",
	)
}

func (g *suggestionGenerator) duplicate(path string) []string {
	suggestions := []string{
		"The destination holds several files whose names differ only by case",
	}

	if path != "" {
		suggestions = append(suggestions, "Remove the extra copies of "+path+" on the card")
	}

	return suggestions
}

func (g *suggestionGenerator) locked(path string) []string {
	suggestions := []string{
		"Wait for the slicer to finish writing the file",
	}

	if path != "" {
		suggestions = append(suggestions, "Close any program holding "+path+" open")
	}

	return suggestions
}

func (g *suggestionGenerator) unavailable() []string {
	return []string{
		"Check that the printer is powered on and the SD card is inserted",
		"Verify the printer API key and the --remote mapping",
		"Check the serial port name and that no other program has it open",
	}
}

func (g *suggestionGenerator) permission(path string) []string {
	suggestions := []string{
		"Ensure the SD card is not write-protected",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Check permissions with 'ls -la %s'", path))
	} else {
		suggestions = append(suggestions, "Check permissions with 'ls -la' on the affected path")
	}

	return append(suggestions, "Try running with appropriate permissions or as a privileged user")
}

func (g *suggestionGenerator) diskSpace() []string {
	return []string{
		"Free up space on the SD card",
		"Remove old prints from the card or use a larger card",
	}
}

func (g *suggestionGenerator) missingPath(path string) []string {
	suggestions := []string{
		"Verify the path exists and is spelled correctly",
	}

	if path != "" {
		return append(suggestions, "Ensure all parent directories exist for "+path)
	}

	return append(suggestions, "Ensure all parent directories exist")
}

func (g *suggestionGenerator) copyFailure() []string {
	return []string{
		"Reseat the SD card and try again",
		"The card may be failing; check it on another machine",
	}
}

func (g *suggestionGenerator) unknown(path string) []string {
	suggestions := []string{
		"Check the error message for more details",
		"Run with --verbose and inspect the log file",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify the path is accessible: "+path)
	}

	return suggestions
}

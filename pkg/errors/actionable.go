// Package errors turns the failures a mirror can hit (a card that never
// mounted, a slicer still holding a file, a conflicting edit on the card)
// into errors that carry a category and concrete next steps for the operator.
//
//	enricher := errors.NewEnricher()
//	if _, err := copier.Copy(ctx, src, dst); err != nil {
//	    enriched := enricher.Enrich(err, dst)
//	    fmt.Println(enriched)
//	    fmt.Println(errors.FormatSuggestions(enriched))
//	}
//
// When no path is given the enricher tries to pull one out of the message,
// so "open /media/sdcard/part.gcode: permission denied" still yields
// suggestions that name the file.
package errors

import "strings"

// Exported constants.
const (
	CategoryConflict    ErrorCategory = "conflict"
	CategoryCopy        ErrorCategory = "copy"
	CategoryDiskSpace   ErrorCategory = "disk_space"
	CategoryDuplicate   ErrorCategory = "duplicate"
	CategoryLocked      ErrorCategory = "locked"
	CategoryPath        ErrorCategory = "path"
	CategoryPermission  ErrorCategory = "permission"
	CategoryUnavailable ErrorCategory = "unavailable"
	CategoryUnknown     ErrorCategory = "unknown"
)

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
	Unwrap() error
}

// ErrorCategory represents the type of error that occurred.
type ErrorCategory string

// NewActionableError wraps cause with a category and suggestions.
func NewActionableError(
	cause error,
	category ErrorCategory,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		cause:        cause,
		category:     category,
		suggestions:  suggestions,
		affectedPath: affectedPath,
	}
}

// FormatSuggestions renders the suggestions of an ActionableError as an
// indented bulleted list. Returns "" for nil, plain, or suggestion-less errors.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	actionable, ok := err.(ActionableError)
	if !ok {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

type actionableError struct {
	cause        error
	category     ErrorCategory
	suggestions  []string
	affectedPath string
}

func (e *actionableError) AffectedPath() string {
	return e.affectedPath
}

func (e *actionableError) Category() ErrorCategory {
	return e.category
}

func (e *actionableError) Error() string {
	return e.cause.Error()
}

func (e *actionableError) Suggestions() []string {
	return e.suggestions
}

// Unwrap exposes the cause so errors.Is still sees sentinels like ErrConflict.
func (e *actionableError) Unwrap() error {
	return e.cause
}

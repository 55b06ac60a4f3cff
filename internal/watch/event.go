// Package watch turns filesystem notifications under a source tree into the
// two events the mirror acts on: a file was modified, or a file was renamed.
package watch

import "fmt"

// EventType is the kind of change observed.
type EventType int

const (
	// Modified covers both creation and content changes.
	Modified EventType = iota
	// Renamed means OldPath became Path.
	Renamed
)

func (t EventType) String() string {
	switch t {
	case Modified:
		return "modified"
	case Renamed:
		return "renamed"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is a settled change to a watched file.
type Event struct {
	Type EventType
	// Path is the absolute path of the file after the change.
	Path string
	// OldPath is set for Renamed events.
	OldPath string
}

func (e Event) String() string {
	if e.Type == Renamed {
		return fmt.Sprintf("%s %s -> %s", e.Type, e.OldPath, e.Path)
	}

	return fmt.Sprintf("%s %s", e.Type, e.Path)
}

// Package decide compares a source file's modification time against its
// mirrored copy and says whether the copy should be written.
package decide

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Tolerance bands. Timestamps within these windows are treated as the same
// write, which absorbs FAT's two-second mtime resolution.
const (
	CopyTolerance  = 2 * time.Second
	EqualTolerance = 3 * time.Second
)

// ErrConflict is returned when the destination copy is newer than the source.
var ErrConflict = errors.New("destination is newer than source: conflict")

// ErrUnknownPolicy is returned when parsing an unrecognized policy name.
var ErrUnknownPolicy = errors.New("unknown sync policy")

// Outcome is the result of comparing one source file with its destination.
type Outcome int

// Outcomes.
const (
	SkippedEqual Outcome = iota
	CopiedNew
	CopiedOverwrite
	Conflict
)

func (o Outcome) String() string {
	switch o {
	case SkippedEqual:
		return "equal"
	case CopiedNew:
		return "new"
	case CopiedOverwrite:
		return "synced"
	case Conflict:
		return "conflict"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Copies reports whether the outcome requires writing the destination.
func (o Outcome) Copies() bool {
	return o == CopiedNew || o == CopiedOverwrite
}

// Policy selects how timestamp differences are resolved.
type Policy int

// Policies.
const (
	// PolicyNewerWins copies only when the source is newer and flags a newer destination.
	PolicyNewerWins Policy = iota
	// PolicyDifferent copies whenever the timestamps differ, in either direction.
	PolicyDifferent
)

func (p Policy) String() string {
	switch p {
	case PolicyNewerWins:
		return "newer"
	case PolicyDifferent:
		return "different"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// UnmarshalText parses "newer" or "different", so go-arg can fill a Policy flag.
func (p *Policy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "newer", "":
		*p = PolicyNewerWins
	case "different":
		*p = PolicyDifferent
	default:
		return fmt.Errorf("%w: %q (want newer or different)", ErrUnknownPolicy, string(text))
	}

	return nil
}

// MarshalText renders the policy name.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Decide compares src with dst. A nil dst means the destination file does not exist.
func Decide(src time.Time, dst *time.Time, policy Policy) (Outcome, error) {
	if dst == nil {
		return CopiedNew, nil
	}

	delta := src.Sub(*dst)

	if policy == PolicyDifferent {
		if abs(delta) > CopyTolerance {
			return CopiedOverwrite, nil
		}

		return SkippedEqual, nil
	}

	switch {
	case delta > CopyTolerance:
		return CopiedOverwrite, nil
	case abs(delta) < EqualTolerance:
		return SkippedEqual, nil
	default:
		return Conflict, fmt.Errorf("%w: destination is %s newer", ErrConflict, (-delta).Round(time.Second))
	}
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}

	return d
}

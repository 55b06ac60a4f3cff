package fileops

// LockChecker reports whether a source file is still held exclusively by its writer.
type LockChecker interface {
	IsLocked(path string) bool
}

// LockCheckerFunc adapts a function to LockChecker.
type LockCheckerFunc func(path string) bool

// IsLocked calls f(path).
func (f LockCheckerFunc) IsLocked(path string) bool {
	return f(path)
}

// ExclusiveLockChecker probes a local file by trying to open it exclusively.
// Any failure to do so, including the file not existing yet, counts as locked.
type ExclusiveLockChecker struct{}

// IsLocked attempts an exclusive open of path.
func (ExclusiveLockChecker) IsLocked(path string) bool {
	return !tryExclusiveOpen(path)
}

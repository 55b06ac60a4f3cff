package fileops

import "errors"

var (
	// ErrCopyCancelled is returned when the context ends while waiting to copy.
	ErrCopyCancelled = errors.New("copy cancelled")
	// ErrSourceVanished is returned when the source is renamed or deleted
	// before it could be copied. It always wraps fs.ErrNotExist.
	ErrSourceVanished = errors.New("source vanished")
)

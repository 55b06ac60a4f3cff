package fileops

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joe/sync-onboard/pkg/clock"
)

// LockPollInterval is how often a locked source is re-checked.
const LockPollInterval = 250 * time.Millisecond

// SafeCopier waits for a source file to be released by its writer (a slicer
// still flushing, for instance) before copying it, so a partially written file
// is never mirrored. There is no timeout; only ctx ends the wait.
type SafeCopier struct {
	Ops          *FileOps
	Locks        LockChecker
	Clock        clock.Clock
	Logger       *slog.Logger
	PollInterval time.Duration
}

// NewSafeCopier creates a SafeCopier with the production lock checker and clock.
func NewSafeCopier(ops *FileOps, logger *slog.Logger) *SafeCopier {
	return &SafeCopier{
		Ops:          ops,
		Locks:        ExclusiveLockChecker{},
		Clock:        clock.Real{},
		Logger:       logger,
		PollInterval: LockPollInterval,
	}
}

// Copy blocks while src is locked, then copies it over dst preserving mtime.
// A source that disappears before it is copied yields ErrSourceVanished.
func (c *SafeCopier) Copy(ctx context.Context, src, dst string) (int64, error) {
	if err := c.WaitUnlocked(ctx, src); err != nil {
		return 0, err
	}

	written, err := c.Ops.CopyFile(src, dst)
	if err != nil && c.vanished(src) {
		return written, fmt.Errorf("%w: %s: %w", ErrSourceVanished, src, err)
	}

	return written, err
}

// WaitUnlocked polls until src can be opened exclusively. The source is
// re-checked on every poll, so a file renamed or deleted by its writer ends
// the wait with ErrSourceVanished instead of counting as locked forever.
func (c *SafeCopier) WaitUnlocked(ctx context.Context, src string) error {
	interval := c.PollInterval
	if interval <= 0 {
		interval = LockPollInterval
	}

	for waited := 0; ; waited++ {
		if c.vanished(src) {
			return fmt.Errorf("%w: %s: %w", ErrSourceVanished, src, fs.ErrNotExist)
		}

		if !c.Locks.IsLocked(src) {
			return nil
		}

		if waited == 0 && c.Logger != nil {
			c.Logger.Info("waiting for writer to release file", "path", src)
		}

		if err := c.Clock.Sleep(ctx, interval); err != nil {
			return fmt.Errorf("%w: waiting for %s: %w", ErrCopyCancelled, src, err)
		}
	}
}

func (c *SafeCopier) vanished(src string) bool {
	_, err := c.Ops.SourceFS.Stat(src)

	return IsNotExist(err)
}

// Package probe decides whether the destination card is usable and, while it
// is not, asks the printer to let go of it.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joe/sync-onboard/internal/device"
	"github.com/joe/sync-onboard/pkg/clock"
	"github.com/joe/sync-onboard/pkg/filesystem"
)

// Retry pacing.
const (
	SettleDelay    = 5 * time.Second
	FailureBackoff = 20 * time.Second
)

// DefaultMarker is the firmware file every printer card carries in its root.
const DefaultMarker = "firmware.cur"

// Sentinel errors describing why the destination is not ready.
var (
	ErrNotReady     = errors.New("destination not ready")
	ErrRootMissing  = errors.New("destination root missing")
	ErrNotDirectory = errors.New("destination root is not a directory")
	ErrNotWritable  = errors.New("destination not writable")
	ErrMarkerCount  = errors.New("destination marker file count")
	ErrNoReleaser   = errors.New("no way to release the destination")
)

// Releaser asks a device to release the card. target is an HTTP endpoint or
// a serial port name depending on the implementation.
type Releaser interface {
	Release(ctx context.Context, target string) error
}

// Prober blocks until the destination is ready.
type Prober struct {
	FS filesystem.FileSystem
	// Root is the destination directory on FS.
	Root string
	// Destination is the user-facing destination (drive, mount path or
	// sftp:// URL) used to look up a release endpoint. Defaults to Root.
	Destination string
	Marker      string

	Resolver   device.Resolver
	Remote     Releaser
	Local      Releaser
	SerialPort string

	Clock  clock.Clock
	Logger *slog.Logger

	// MaxAttempts bounds the number of probes when > 0. Production leaves it 0.
	MaxAttempts int
}

// EnsureReady probes the destination and remediates until it is ready.
// It only returns early on ctx cancellation or when MaxAttempts is exhausted.
func (p *Prober) EnsureReady(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		probeErr := p.Probe()
		if probeErr == nil {
			if attempt > 1 {
				p.Logger.Info("destination ready", "root", p.Root, "attempts", attempt)
			}

			return nil
		}

		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrNotReady, attempt, probeErr)
		}

		p.Logger.Info("destination not ready", "root", p.Root, "reason", probeErr)

		delay := SettleDelay

		if err := p.remediate(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			p.Logger.Warn("release failed, backing off", "error", err, "backoff", FailureBackoff)
			delay = FailureBackoff
		}

		if err := p.Clock.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// Probe checks the destination once: the root exists, accepts a write, and
// holds exactly one marker file.
func (p *Prober) Probe() error {
	info, err := p.FS.Stat(p.Root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRootMissing, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, p.Root)
	}

	if err := p.probeWrite(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotWritable, err)
	}

	entries, err := p.FS.ReadDir(p.Root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRootMissing, err)
	}

	marker := p.marker()
	count := 0

	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), marker) {
			count++
		}
	}

	if count != 1 {
		return fmt.Errorf("%w: found %d %s, want 1", ErrMarkerCount, count, marker)
	}

	return nil
}

func (p *Prober) probeWrite() error {
	name := p.FS.Join(p.Root, ".sync-onboard-"+uuid.NewString()+".tmp")

	file, err := p.FS.Create(name)
	if err != nil {
		return err
	}

	closeErr := file.Close()
	removeErr := p.FS.Remove(name)

	return errors.Join(closeErr, removeErr)
}

// remediate asks the printer host over HTTP when the destination maps to
// one, and the printer itself over serial otherwise.
func (p *Prober) remediate(ctx context.Context) error {
	if p.Resolver != nil && p.Remote != nil {
		if endpoint, ok := p.Resolver.ResolveRemoteEndpoint(p.destination()); ok {
			p.Logger.Info("requesting release over HTTP", "endpoint", endpoint)
			return p.Remote.Release(ctx, endpoint)
		}
	}

	if p.Local == nil || p.SerialPort == "" {
		return ErrNoReleaser
	}

	p.Logger.Info("requesting release over serial", "port", p.SerialPort)

	return p.Local.Release(ctx, p.SerialPort)
}

func (p *Prober) destination() string {
	if p.Destination != "" {
		return p.Destination
	}

	return p.Root
}

func (p *Prober) marker() string {
	if p.Marker != "" {
		return p.Marker
	}

	return DefaultMarker
}

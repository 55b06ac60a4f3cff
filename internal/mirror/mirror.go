// Package mirror keeps a flat destination directory in step with the
// matching files of a source tree, one file at a time.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joe/sync-onboard/internal/decide"
	"github.com/joe/sync-onboard/internal/watch"
	pkgerrors "github.com/joe/sync-onboard/pkg/errors"
	"github.com/joe/sync-onboard/pkg/fileops"
	"github.com/joe/sync-onboard/pkg/filesystem"
)

// Sentinel errors.
var (
	ErrDuplicateDestination = errors.New("duplicate destination files")
	ErrUnexpectedEvent      = errors.New("unexpected event type")
)

// Readiness blocks until the destination can be written.
type Readiness interface {
	EnsureReady(ctx context.Context) error
}

// Copier copies one file, overwriting the destination and keeping the source mtime.
type Copier interface {
	Copy(ctx context.Context, src, dst string) (int64, error)
}

// Tally counts the outcomes of a manual sync.
type Tally struct {
	Equal  int
	Synced int
	New    int
}

// Add counts one outcome.
func (t *Tally) Add(outcome decide.Outcome) {
	switch outcome {
	case decide.SkippedEqual:
		t.Equal++
	case decide.CopiedOverwrite:
		t.Synced++
	case decide.CopiedNew:
		t.New++
	case decide.Conflict:
	}
}

// Mirror copies matching source files into the destination root by file name.
// Every entry point holds the same lock, so a manual sync and the event
// worker never touch the destination at the same time.
type Mirror struct {
	SourceFS   filesystem.FileSystem
	SourceRoot string
	DestFS     filesystem.FileSystem
	DestRoot   string

	Filter   watch.Filter
	Policy   decide.Policy
	Ready    Readiness
	Copier   Copier
	Enricher pkgerrors.Enricher
	Logger   *slog.Logger

	// OnError receives every enriched error the event worker swallows.
	OnError func(error)

	mu sync.Mutex
}

// ManualSync ensures the destination is ready, then syncs every matching
// file found directly inside each first-level subdirectory of the source
// root. A conflict or a duplicated destination name aborts the pass.
func (m *Mirror) ManualSync(ctx context.Context) (Tally, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tally Tally

	if err := m.Ready.EnsureReady(ctx); err != nil {
		return tally, err
	}

	dirs, err := m.SourceFS.ReadDir(m.SourceRoot)
	if err != nil {
		return tally, fmt.Errorf("failed to list source %s: %w", m.SourceRoot, err)
	}

	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}

		dirPath := m.SourceFS.Join(m.SourceRoot, dir.Name())

		files, err := m.SourceFS.ReadDir(dirPath)
		if err != nil {
			return tally, fmt.Errorf("failed to list source %s: %w", m.Simplify(dirPath), err)
		}

		for _, file := range files {
			if file.IsDir() || !m.Filter.Matches(file.Name()) {
				continue
			}

			outcome, err := m.syncFile(ctx, m.SourceFS.Join(dirPath, file.Name()), file)
			if errors.Is(err, fileops.ErrSourceVanished) {
				continue
			}

			if err != nil {
				return tally, err
			}

			tally.Add(outcome)
		}
	}

	m.Logger.Info("manual sync", "equals", tally.Equal, "synced", tally.Synced, "new", tally.New)

	return tally, nil
}

// HandleEvent dispatches a watcher event to the matching handler.
func (m *Mirror) HandleEvent(ctx context.Context, event watch.Event) error {
	switch event.Type {
	case watch.Modified:
		return m.HandleChanged(ctx, event.Path)
	case watch.Renamed:
		return m.HandleRenamed(ctx, event.OldPath, event.Path)
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedEvent, event)
	}
}

// HandleChanged syncs one created or modified source file.
func (m *Mirror) HandleChanged(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.Ready.EnsureReady(ctx); err != nil {
		return err
	}

	return m.syncPath(ctx, path)
}

// HandleRenamed removes the destination copy of oldPath and syncs newPath.
// Either side is skipped when its name does not match the filter.
func (m *Mirror) HandleRenamed(ctx context.Context, oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.Ready.EnsureReady(ctx); err != nil {
		return err
	}

	if m.Filter.Matches(oldPath) {
		if err := m.removeDest(filepath.Base(oldPath)); err != nil {
			return err
		}
	}

	if !m.Filter.Matches(newPath) {
		return nil
	}

	return m.syncPath(ctx, newPath)
}

// Run handles events one at a time until events is closed or ctx ends.
// Handler errors are reported and never stop the worker.
func (m *Mirror) Run(ctx context.Context, events <-chan watch.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-events:
			if !ok {
				return nil
			}

			err := m.HandleEvent(ctx, event)
			if err == nil {
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			m.Report(err)
		}
	}
}

// Report enriches err, logs it, and passes it to OnError.
func (m *Mirror) Report(err error) {
	if m.Enricher != nil {
		err = m.Enricher.Enrich(err, "")
	}

	m.Logger.Error("sync failed", "error", err)

	if m.OnError != nil {
		m.OnError(err)
	}
}

// Simplify shortens paths under the source root to "[S]/relative/path".
func (m *Mirror) Simplify(path string) string {
	rel, err := filepath.Rel(m.SourceRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}

	if rel == "." {
		return "[S]"
	}

	return "[S]/" + filepath.ToSlash(rel)
}

func (m *Mirror) syncPath(ctx context.Context, path string) error {
	info, err := m.SourceFS.Stat(path)
	if err != nil {
		if fileops.IsNotExist(err) {
			m.Logger.Debug("source vanished before sync", "path", m.Simplify(path))
			return nil
		}

		return fmt.Errorf("failed to stat %s: %w", m.Simplify(path), err)
	}

	_, err = m.syncFile(ctx, path, info)
	if errors.Is(err, fileops.ErrSourceVanished) {
		return nil
	}

	return err
}

// syncFile decides and, when needed, copies src over its destination namesake.
func (m *Mirror) syncFile(ctx context.Context, src string, info os.FileInfo) (decide.Outcome, error) {
	name := info.Name()

	matches, err := m.destMatches(name)
	if err != nil {
		return decide.Conflict, err
	}

	dstPath := m.DestFS.Join(m.DestRoot, name)

	var dstTime *time.Time

	switch len(matches) {
	case 0:
	case 1:
		mtime := matches[0].ModTime()
		dstPath = m.DestFS.Join(m.DestRoot, matches[0].Name())
		dstTime = &mtime
	default:
		return decide.Conflict, fmt.Errorf("%w: %d files named %s in %s",
			ErrDuplicateDestination, len(matches), name, m.DestRoot)
	}

	outcome, err := decide.Decide(info.ModTime(), dstTime, m.Policy)
	if err != nil {
		return outcome, fmt.Errorf("sync %s: %w", m.Simplify(src), err)
	}

	if !outcome.Copies() {
		m.Logger.Debug("up to date", "file", m.Simplify(src))
		return outcome, nil
	}

	written, err := m.Copier.Copy(ctx, src, dstPath)
	if errors.Is(err, fileops.ErrSourceVanished) {
		m.Logger.Debug("source vanished before copy", "file", m.Simplify(src))
	}

	if err != nil {
		return outcome, fmt.Errorf("copy %s: %w", m.Simplify(src), err)
	}

	m.Logger.Info("copied", "file", m.Simplify(src), "outcome", outcome.String(), "bytes", written)

	return outcome, nil
}

// destMatches lists destination files whose name equals name, ignoring case.
func (m *Mirror) destMatches(name string) ([]os.FileInfo, error) {
	entries, err := m.DestFS.ReadDir(m.DestRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list destination %s: %w", m.DestRoot, err)
	}

	var matches []os.FileInfo

	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), name) {
			matches = append(matches, entry)
		}
	}

	return matches, nil
}

func (m *Mirror) removeDest(name string) error {
	matches, err := m.destMatches(name)
	if err != nil {
		return err
	}

	for _, match := range matches {
		path := m.DestFS.Join(m.DestRoot, match.Name())

		if err := m.DestFS.Remove(path); err != nil && !fileops.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}

		m.Logger.Info("removed renamed file", "file", path)
	}

	return nil
}

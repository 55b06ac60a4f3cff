// Package console is the operator's side of the process: it prints what the
// mirror is doing and runs a manual sync whenever "s" is entered.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/joe/sync-onboard/internal/mirror"
	pkgerrors "github.com/joe/sync-onboard/pkg/errors"
)

// SyncCommand is the line that triggers a manual sync.
const SyncCommand = "s"

// Syncer runs a full manual sync.
type Syncer interface {
	ManualSync(ctx context.Context) (mirror.Tally, error)
}

// Console reads commands from In and writes results to Out.
// ShowError may be called from other goroutines.
type Console struct {
	In       io.Reader
	Out      io.Writer
	Syncer   Syncer
	Styles   Styles
	Enricher pkgerrors.Enricher

	mu sync.Mutex
}

// Banner tells the operator what is being mirrored and how to trigger a sync.
func (c *Console) Banner(source, destination string) {
	c.printf("%s %s\n%s %s\n%s\n",
		c.Styles.Label("source:     "), source,
		c.Styles.Label("destination:"), destination,
		c.Styles.Dim(fmt.Sprintf("watching for changes; enter %q for a manual sync", SyncCommand)))
}

// Run handles input lines until In is exhausted or ctx ends. Lines other
// than the sync command are ignored. Reaching EOF returns nil.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(c.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("failed to read console input: %w", err)
					}
				default:
				}

				return nil
			}

			if !strings.EqualFold(strings.TrimSpace(line), SyncCommand) {
				continue
			}

			if err := c.manualSync(ctx); err != nil {
				return err
			}
		}
	}
}

// manualSync runs one sync and reports the result. Only cancellation is returned.
func (c *Console) manualSync(ctx context.Context) error {
	c.printf("%s\n", c.Styles.Dim("manual sync started"))

	tally, err := c.Syncer.ManualSync(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.ShowError(err)

		return nil
	}

	c.printf("%s equals=%d synced=%d new=%d\n",
		c.Styles.Success("manual sync:"), tally.Equal, tally.Synced, tally.New)

	return nil
}

// ShowError prints err in the error style followed by its suggestions.
func (c *Console) ShowError(err error) {
	if err == nil {
		return
	}

	if c.Enricher != nil {
		err = c.Enricher.Enrich(err, "")
	}

	var builder strings.Builder

	fmt.Fprintf(&builder, "%s %s\n", c.Styles.Error("✗"), c.Styles.Error(err.Error()))

	if suggestions := pkgerrors.FormatSuggestions(err); suggestions != "" {
		fmt.Fprintf(&builder, "%s\n", suggestions)
	}

	c.printf("%s", builder.String())
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(c.Out, format, args...)
}

package watch

import (
	"path/filepath"
	"sort"
	"time"
)

// changeQueue debounces bursts of writes: a path becomes due once no new
// change has been queued for it for the debounce interval.
type changeQueue struct {
	interval time.Duration
	pending  map[string]time.Time
}

func newChangeQueue(interval time.Duration) *changeQueue {
	return &changeQueue{
		interval: interval,
		pending:  make(map[string]time.Time),
	}
}

// add queues path, restarting its quiet period.
func (q *changeQueue) add(path string, now time.Time) {
	q.pending[path] = now
}

// drop forgets path.
func (q *changeQueue) drop(path string) {
	delete(q.pending, path)
}

// due removes and returns the paths that have been quiet for the interval, sorted.
func (q *changeQueue) due(now time.Time) []string {
	var ready []string

	for path, queuedAt := range q.pending {
		if now.Sub(queuedAt) < q.interval {
			continue
		}

		ready = append(ready, path)
		delete(q.pending, path)
	}

	sort.Strings(ready)

	return ready
}

func (q *changeQueue) len() int {
	return len(q.pending)
}

// renamePairer joins the two halves of a rename. Most platforms report the
// old name as a Rename and the new name as a Create shortly after.
type renamePairer struct {
	window  time.Duration
	oldPath string
	at      time.Time
}

// renamed records the old half. An earlier unpaired half is discarded and returned.
func (r *renamePairer) renamed(oldPath string, now time.Time) (dropped string) {
	dropped = r.oldPath
	r.oldPath, r.at = oldPath, now

	return dropped
}

// created offers the Create of newPath at now to the waiting old half. Only
// a rename within one directory pairs. A waiting half inside the window is
// consumed either way and returned, so the caller can log what it drops.
func (r *renamePairer) created(newPath string, now time.Time) (oldPath string, ok bool) {
	if r.oldPath == "" || now.Sub(r.at) > r.window {
		return "", false
	}

	oldPath = r.oldPath
	r.oldPath = ""

	return oldPath, filepath.Dir(oldPath) == filepath.Dir(newPath)
}

// expire discards an old half that waited longer than the window, returning it.
func (r *renamePairer) expire(now time.Time) (dropped string) {
	if r.oldPath == "" || now.Sub(r.at) <= r.window {
		return ""
	}

	dropped = r.oldPath
	r.oldPath = ""

	return dropped
}

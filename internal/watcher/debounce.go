package watcher

import (
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pendingChange tracks a file change event
type pendingChange struct {
	op        fsnotify.Op
	timestamp time.Time
}

// Debouncer batches file change events to avoid redundant processing
type Debouncer struct {
	mu       sync.Mutex
	pending  map[string]*pendingChange
	interval time.Duration
	timer    *time.Timer
	stopped  bool
	inflight sync.WaitGroup
}

// NewDebouncer creates a new debouncer with the given quiet period
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		pending:  make(map[string]*pendingChange),
		interval: interval,
	}
}

// Add records a file change event
func (d *Debouncer) Add(path string, op fsnotify.Op) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.pending[path]; ok {
		existing.op |= op
		existing.timestamp = time.Now()
	} else {
		d.pending[path] = &pendingChange{
			op:        op,
			timestamp: time.Now(),
		}
	}
}

// Flush (re)arms the timer; once no event arrived for the interval, callback
// receives the pending paths split into changed and removed, each sorted.
// A path counts as removed when it no longer exists at flush time
func (d *Debouncer) Flush(callback func(changed, removed []string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil && d.timer.Stop() {
		d.inflight.Done()
	}

	d.inflight.Add(1)
	d.timer = time.AfterFunc(d.interval, func() {
		defer d.inflight.Done()

		changed, removed := d.drain()
		if len(changed) > 0 || len(removed) > 0 {
			callback(changed, removed)
		}
	})
}

func (d *Debouncer) drain() (changed, removed []string) {
	d.mu.Lock()
	pending := d.pending
	d.pending = make(map[string]*pendingChange)
	d.mu.Unlock()

	for path, change := range pending {
		if _, err := os.Stat(path); err != nil {
			removed = append(removed, path)
		} else if change.op.Has(fsnotify.Write) || change.op.Has(fsnotify.Create) ||
			change.op.Has(fsnotify.Rename) || change.op.Has(fsnotify.Remove) {
			changed = append(changed, path)
		}
	}

	sort.Strings(changed)
	sort.Strings(removed)
	return changed, removed
}

// Stop cancels a pending flush and waits for a running callback to return
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.inflight.Done()
	}
	d.mu.Unlock()

	d.inflight.Wait()
}

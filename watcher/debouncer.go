package watcher

import (
	"sort"
	"sync"
	"time"
)

// Event is one collapsed filesystem change inside a batch.
type Event struct {
	Path string
	Op   Op
}

// Op is the kind of filesystem change.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Debouncer collects changes and emits them as one batch after a quiet period,
// so a burst of changes costs a single full rebuild.
// Repeated changes to the same path within the window keep only the latest op.
type Debouncer struct {
	interval time.Duration
	events   map[string]Op
	mu       sync.Mutex
	timer    *time.Timer
	output   chan []Event
}

// NewDebouncer creates a debouncer with the specified quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		events:   make(map[string]Op),
		output:   make(chan []Event, 1),
	}
}

// Output returns the channel that receives batches, sorted by path.
func (d *Debouncer) Output() <-chan []Event {
	return d.output
}

// Add records a change and restarts the quiet period.
func (d *Debouncer) Add(path string, op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.events[path] = op

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

// Pending returns the number of changes waiting for the quiet period to end.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

// flush hands the accumulated changes to the consumer. When the previous batch
// has not been picked up yet, the changes stay buffered and are retried later.
func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.events) == 0 {
		return
	}

	batch := make([]Event, 0, len(d.events))
	for path, op := range d.events {
		batch = append(batch, Event{Path: path, Op: op})
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })

	select {
	case d.output <- batch:
		d.events = make(map[string]Op)
	default:
		d.timer = time.AfterFunc(d.interval, d.flush)
	}
}

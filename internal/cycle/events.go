package cycle

import (
	"sync"
	"time"

	"github.com/ivlev/herocycle/internal/media"
)

type eventKind int

const (
	eventVisibility eventKind = iota
	eventNavigation
	eventResize
	eventStall
	eventStallRecovered
	eventTick
	eventLoaded
	eventTimelineDone
)

func (k eventKind) String() string {
	switch k {
	case eventVisibility:
		return "visibility"
	case eventNavigation:
		return "navigation"
	case eventResize:
		return "resize"
	case eventStall:
		return "stall"
	case eventStallRecovered:
		return "stall_recovered"
	case eventTick:
		return "tick"
	case eventLoaded:
		return "loaded"
	case eventTimelineDone:
		return "timeline_done"
	default:
		return "unknown"
	}
}

type event struct {
	kind     eventKind
	visible  bool
	atHome   bool
	viewport media.Viewport

	// load results carry the generation they were issued under so
	// stale completions can be discarded.
	generation uint64
	item       *media.MediaItem
	element    *Element
	err        error
}

// dispatcher funnels every external signal through one channel so the
// machine mutates state from a single goroutine. Bursty sources
// (visibility, navigation, resize) are debounced per source; within a
// source only the last event of a burst is delivered.
type dispatcher struct {
	mu     sync.Mutex
	out    chan event
	window time.Duration
	timers map[eventKind]*time.Timer
	latest map[eventKind]event
	closed bool
}

func newDispatcher(window time.Duration) *dispatcher {
	return &dispatcher{
		out:    make(chan event, 64),
		window: window,
		timers: make(map[eventKind]*time.Timer),
		latest: make(map[eventKind]event),
	}
}

func (d *dispatcher) events() <-chan event { return d.out }

// submit forwards ev immediately, reporting whether it was delivered.
// Drops the event instead of blocking if the machine has fallen far
// behind; callers owning resources in ev must release them on false.
func (d *dispatcher) submit(ev event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.out <- ev:
		return true
	default:
		return false
	}
}

// submitDebounced coalesces a burst of same-kind events, delivering
// only the last one after the window elapses.
func (d *dispatcher) submitDebounced(ev event) {
	if d.window <= 0 {
		d.submit(ev)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.latest[ev.kind] = ev
	if t, ok := d.timers[ev.kind]; ok {
		t.Reset(d.window)
		return
	}
	kind := ev.kind
	d.timers[kind] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed {
			return
		}
		delete(d.timers, kind)
		select {
		case d.out <- d.latest[kind]:
		default:
		}
	})
}

// stop cancels pending timers and drops all further submissions.
func (d *dispatcher) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for kind, t := range d.timers {
		t.Stop()
		delete(d.timers, kind)
	}
}

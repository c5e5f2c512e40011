package animation

import (
	"sync"
	"time"
)

// Target receives interpolated transforms on every timeline tick.
type Target interface {
	ApplyFrame(Frame)
}

// Timeline is a playable pan/zoom sequence. Kill is idempotent and
// safe from any state.
type Timeline interface {
	Play()
	Pause()
	Resume()
	// Seek jumps to the normalized position t in [0,1].
	Seek(t float64)
	Kill()
	// Done is closed when the timeline completes or is killed.
	Done() <-chan struct{}
	// Completed reports whether the timeline ran to its natural end.
	Completed() bool
	// Progress returns the current normalized position.
	Progress() float64
}

// Runtime builds timelines. The cycle machine treats it as an external
// capability so tests can substitute an instant implementation.
type Runtime interface {
	NewTimeline(target Target, keyframes []Keyframe, duration time.Duration) Timeline
}

// TickerRuntime drives timelines with a wall-clock ticker.
type TickerRuntime struct {
	// Interval between frame updates. Defaults to 16ms.
	Interval time.Duration
}

// NewTickerRuntime returns a runtime ticking at roughly 60 frames/s.
func NewTickerRuntime() *TickerRuntime {
	return &TickerRuntime{Interval: 16 * time.Millisecond}
}

// NewTimeline builds a timeline over the keyframes. The timeline does
// not start until Play is called.
func (r *TickerRuntime) NewTimeline(target Target, keyframes []Keyframe, duration time.Duration) Timeline {
	interval := r.Interval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &tickerTimeline{
		target:    target,
		keyframes: keyframes,
		duration:  duration,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

type tickerTimeline struct {
	target    Target
	keyframes []Keyframe
	duration  time.Duration
	interval  time.Duration

	mu        sync.Mutex
	clock     *pausableClock
	playing   bool
	completed bool

	killOnce sync.Once
	doneOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func (t *tickerTimeline) Play() {
	t.mu.Lock()
	if t.playing || t.isFinished() {
		t.mu.Unlock()
		return
	}
	t.playing = true
	t.clock = newPausableClock()
	t.mu.Unlock()

	// Apply the first frame immediately so the target never renders a
	// stale transform while waiting for the first tick.
	t.target.ApplyFrame(Interpolate(t.keyframes, 0))

	go t.run()
}

func (t *tickerTimeline) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			progress := t.Progress()
			t.target.ApplyFrame(Interpolate(t.keyframes, progress))
			if progress >= 1 {
				t.complete()
				return
			}
		}
	}
}

func (t *tickerTimeline) complete() {
	t.mu.Lock()
	t.completed = true
	t.playing = false
	t.mu.Unlock()
	t.doneOnce.Do(func() { close(t.done) })
}

func (t *tickerTimeline) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clock != nil {
		t.clock.Pause()
	}
}

func (t *tickerTimeline) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clock != nil {
		t.clock.Resume()
	}
}

func (t *tickerTimeline) Seek(pos float64) {
	if pos < 0 {
		pos = 0
	} else if pos > 1 {
		pos = 1
	}
	t.mu.Lock()
	if t.clock != nil {
		t.clock.Rewind(time.Duration(pos * float64(t.duration)))
	}
	t.mu.Unlock()
	t.target.ApplyFrame(Interpolate(t.keyframes, pos))
}

func (t *tickerTimeline) Kill() {
	t.killOnce.Do(func() {
		close(t.stop)
		t.mu.Lock()
		t.playing = false
		t.mu.Unlock()
		t.doneOnce.Do(func() { close(t.done) })
	})
}

func (t *tickerTimeline) Done() <-chan struct{} { return t.done }

func (t *tickerTimeline) Completed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

func (t *tickerTimeline) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clock == nil {
		return 0
	}
	if t.duration <= 0 {
		return 1
	}
	p := float64(t.clock.Elapsed()) / float64(t.duration)
	if p > 1 {
		p = 1
	} else if p < 0 {
		p = 0
	}
	return p
}

// isFinished must be called with the mutex held.
func (t *tickerTimeline) isFinished() bool {
	select {
	case <-t.done:
		return true
	default:
		return t.completed
	}
}

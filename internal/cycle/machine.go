package cycle

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/ivlev/herocycle/internal/analyzer"
	"github.com/ivlev/herocycle/internal/animation"
	"github.com/ivlev/herocycle/internal/assets"
	"github.com/ivlev/herocycle/internal/config"
	"github.com/ivlev/herocycle/internal/director"
	"github.com/ivlev/herocycle/internal/media"
	"github.com/ivlev/herocycle/internal/surface"
	"github.com/ivlev/herocycle/internal/transform"
)

// Options bundles the collaborators a Machine needs. Provider, Runtime
// and Surface are interfaces so tests can run the machine headless with
// instant fakes.
type Options struct {
	Config     *config.Config
	Items      []media.MediaItem
	Provider   assets.Provider
	Runtime    animation.Runtime
	Surface    surface.Surface
	Calculator *director.Calculator
	Logger     *slog.Logger
	Rand       *rand.Rand
}

// Machine drives the hero media cycle. External signals funnel through
// one dispatcher channel, so all state mutation happens on the event
// loop goroutine; Snapshot and Report are safe from anywhere.
type Machine struct {
	cfg      *config.Config
	provider assets.Provider
	runtime  animation.Runtime
	surf     surface.Surface
	calc     *director.Calculator
	logger   *slog.Logger
	urls     *assets.ObjectURLRegistry

	disp *dispatcher

	mu         sync.Mutex
	state      State
	visible    bool
	atHome     bool
	viewport   media.Viewport
	generation uint64
	loading    bool
	session    *Session
	current    *Element
	timeline   animation.Timeline
	playing    bool // timeline has been started
	lastActive time.Time
	startedAt  time.Time

	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	startOnce   sync.Once
	disposeOnce sync.Once
}

// New validates the playlist and builds an idle machine. Start must be
// called before it does anything.
func New(opts Options) (*Machine, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for i := range opts.Items {
		if err := opts.Items[i].Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	calc := opts.Calculator
	if calc == nil {
		calc = director.NewCalculator()
		calc.MinOverflow = cfg.MinOverflow
		calc.BaseScale = cfg.BaseScale
		calc.MaxScale = cfg.MaxScale
		calc.Variance = cfg.Variance
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Machine{
		cfg:      cfg,
		provider: opts.Provider,
		runtime:  opts.Runtime,
		surf:     opts.Surface,
		calc:     calc,
		logger:   logger,
		urls:     assets.NewObjectURLRegistry(),
		disp:     newDispatcher(cfg.Debounce),
		state:    StateIdle,
		visible:  true,
		atHome:   true,
		viewport: cfg.Viewport,
		session:  NewSession(opts.Items, rng),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the event loop and begins loading the first item.
// Calling it again is a no-op.
func (m *Machine) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		m.ctx, m.cancel = context.WithCancel(ctx)
		m.mu.Lock()
		m.startedAt = time.Now()
		m.mu.Unlock()
		go m.run()
		go func() {
			<-m.ctx.Done()
			m.Dispose()
		}()
		m.activate()
	})
}

func (m *Machine) activate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		return
	}
	if m.session.Len() == 0 {
		m.transition(StateError, "empty playlist")
		return
	}
	m.transition(StateLoading, "activate")
	m.startLoad(m.session.Advance(), true)
}

// OnVisibilityChange reports that the page became visible or hidden.
// Bursts within the debounce window collapse to the last value.
func (m *Machine) OnVisibilityChange(visible bool) {
	m.disp.submitDebounced(event{kind: eventVisibility, visible: visible})
}

// OnNavigate reports whether the hero section is the active route.
func (m *Machine) OnNavigate(atHome bool) {
	m.disp.submitDebounced(event{kind: eventNavigation, atHome: atHome})
}

// OnResize reports new viewport geometry.
func (m *Machine) OnResize(vp media.Viewport) {
	m.disp.submitDebounced(event{kind: eventResize, viewport: vp})
}

// OnStall reports that media playback stalled (e.g. a video buffering).
func (m *Machine) OnStall() {
	m.disp.submit(event{kind: eventStall})
}

// OnStallRecovered reports that stalled playback resumed.
func (m *Machine) OnStallRecovered() {
	m.disp.submit(event{kind: eventStallRecovered})
}

// Snapshot returns the current observable state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		State:       m.state,
		Visible:     m.visible,
		AtHome:      m.atHome,
		ActiveIndex: m.session.Index(),
		LastActive:  m.lastActive,
	}
	if cur := m.session.Current(); cur != nil {
		snap.ActiveItemID = cur.ID
	}
	return snap
}

// Dispose tears the machine down: kills the timeline, releases every
// element and object URL, and stops the event loop. Idempotent.
func (m *Machine) Dispose() {
	m.disposeOnce.Do(func() {
		m.disp.stop()
		m.mu.Lock()
		m.generation++
		m.transition(StateDisposed, "dispose")
		if m.timeline != nil {
			m.timeline.Kill()
			m.timeline = nil
		}
		if m.current != nil {
			m.surf.Unmount(m.current)
			m.current.Release()
			m.current = nil
		}
		m.session.Destroy()
		m.mu.Unlock()
		close(m.done)
		if m.cancel != nil {
			m.cancel()
		}
	})
}

// Done is closed once the machine is disposed.
func (m *Machine) Done() <-chan struct{} { return m.done }

func (m *Machine) run() {
	ticker := time.NewTicker(m.cfg.CycleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			// Load results still in flight carry live object
			// URLs; drain what already arrived.
			for {
				select {
				case ev := <-m.disp.events():
					if ev.element != nil {
						ev.element.Release()
					}
				default:
					return
				}
			}
		case <-ticker.C:
			m.handle(event{kind: eventTick})
		case ev := <-m.disp.events():
			m.handle(ev)
		}
	}
}

func (m *Machine) handle(ev event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateDisposed {
		if ev.element != nil {
			ev.element.Release()
		}
		return
	}
	switch ev.kind {
	case eventVisibility:
		m.visible = ev.visible
		m.recomputeActivity()
	case eventNavigation:
		m.atHome = ev.atHome
		m.recomputeActivity()
	case eventStall:
		if m.state == StateCycling {
			m.transition(StatePaused, "stall")
			m.pauseTimeline()
		}
	case eventStallRecovered:
		if m.state == StatePaused && m.visible && m.atHome {
			m.transition(StateCycling, "stall recovered")
			m.resumeTimeline()
		}
	case eventResize:
		m.handleResize(ev.viewport)
	case eventTick:
		m.handleTick()
	case eventLoaded:
		m.handleLoaded(ev)
	case eventTimelineDone:
		if ev.generation == m.generation && m.timeline != nil && m.timeline.Completed() {
			m.logger.Debug("pass_completed", "item", m.activeID())
		}
	}
}

// recomputeActivity reconciles the state with the visible/atHome gate.
func (m *Machine) recomputeActivity() {
	active := m.visible && m.atHome
	switch {
	case !active && m.state == StateCycling:
		m.transition(StatePaused, "inactive")
		m.pauseTimeline()
	case active && m.state == StatePaused:
		m.transition(StateCycling, "active")
		m.resumeTimeline()
	case active && m.state == StateReady && m.timeline != nil && !m.playing:
		// Load finished while hidden; the first pass starts now.
		m.play()
	}
}

func (m *Machine) handleResize(vp media.Viewport) {
	if err := media.ValidateViewport(vp); err != nil {
		m.logger.Warn("resize_rejected", "error", err)
		return
	}
	m.viewport = vp
	item := m.session.Current()
	if item == nil {
		return
	}
	// Re-derive sizing properties for the active item; the running
	// pass keeps its waypoints until the next advance.
	res, err := director.MinimumScale(item.Size, vp, m.calc.MinOverflow)
	if err != nil {
		m.logger.Warn("resize_geometry_failed", "item", item.ID, "error", err)
		return
	}
	m.surf.SetProperties(director.CSSProperties(res))
}

// canCycle is the advancement gate, evaluated at tick time.
func (m *Machine) canCycle() bool {
	return m.visible && m.atHome && m.state == StateCycling
}

func (m *Machine) handleTick() {
	switch {
	case m.state == StateError:
		if m.session.Len() == 0 {
			return
		}
		next := m.session.Advance()
		// Never re-display the item already on the surface; retry
		// with the next candidate instead.
		if m.current != nil && next.ID == m.current.ID() && m.session.Len() > 1 {
			next = m.session.Advance()
		}
		m.transition(StateLoading, "retry")
		m.startLoad(next, true)
	case m.canCycle():
		if m.session.Len() <= 1 {
			// Single-item playlist holds the item indefinitely.
			return
		}
		if m.loading {
			return
		}
		m.startLoad(m.session.Advance(), true)
	}
}

// startLoad fetches an item asynchronously. The result is funneled back
// through the dispatcher tagged with the current generation.
func (m *Machine) startLoad(item *media.MediaItem, priority bool) {
	if item == nil {
		return
	}
	m.loading = true
	gen := m.generation
	it := *item
	go m.fetch(it, gen, priority)
}

// placeholderPosterSize is the pixel size of generated stand-in
// posters.
const placeholderPosterSize = 512

func (m *Machine) fetch(item media.MediaItem, gen uint64, priority bool) {
	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.cfg.LoadTimeout)
	defer cancel()

	width := int(m.displayWidth())
	url := item.VariantFor(width).URL
	if item.Kind == media.KindVideo {
		// Poster-first display: the still fills the surface while
		// the host player streams the video variant.
		url = item.PosterFor(width).URL
	}
	asset, err := m.provider.Fetch(ctx, url, priority)
	if err != nil && item.Kind == media.KindVideo {
		if img, perr := assets.PlaceholderPoster(url, placeholderPosterSize); perr == nil {
			m.logger.Warn("poster_placeholder", "item", item.ID, "error", err)
			asset = &assets.Asset{URL: url, ContentType: "image/png", Image: img}
			err = nil
		}
	}
	ev := event{kind: eventLoaded, generation: gen, item: &item, err: err}
	if err == nil {
		ev.element = newElement(item.ID, asset, m.urls)
	}
	if !m.disp.submit(ev) && ev.element != nil {
		// Machine disposed or backed up; nothing will consume
		// this result.
		ev.element.Release()
	}
}

func (m *Machine) displayWidth() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport.Width
}

func (m *Machine) handleLoaded(ev event) {
	if ev.generation != m.generation {
		// Result from a superseded load; its element was never
		// mounted, so release it here.
		if ev.element != nil {
			ev.element.Release()
		}
		return
	}
	m.loading = false
	if ev.err != nil {
		m.session.RecordFailure(ev.item.ID)
		m.transition(StateError, "load failed")
		m.logger.Warn("load_failed", "item", ev.item.ID, "error", ev.err)
		return
	}
	m.session.RecordLoad(ev.item.ID)
	if m.state == StateLoading {
		m.transition(StateReady, "loaded")
	}
	m.display(ev.item, ev.element)
}

// display mounts the new element, builds its pass, and retires the
// previous item. The previous element is released only after the new
// one is on the surface, so the swap never exposes an empty container.
func (m *Machine) display(item *media.MediaItem, el *Element) {
	prevEl := m.current
	prevTl := m.timeline

	m.session.CacheElement(item.ID, el)
	m.current = el
	m.surf.Mount(el)
	m.session.RecordDisplay(item.ID)
	m.lastActive = time.Now()

	if res, err := director.MinimumScale(item.Size, m.viewport, m.calc.MinOverflow); err == nil {
		m.surf.SetProperties(director.CSSProperties(res))
	} else {
		m.logger.Warn("geometry_failed", "item", item.ID, "error", err)
	}

	keyframes := m.buildKeyframes(item, el)
	m.timeline = m.runtime.NewTimeline(frameTarget{surf: m.surf}, keyframes, m.cfg.CycleInterval)
	m.playing = false
	// A load can resolve while the machine sits in Paused (a stall
	// arrived after the tick started the fetch). The paused contract
	// forbids a running timeline; stall recovery starts this one.
	if m.visible && m.atHome && (m.state == StateReady || m.state == StateCycling) {
		m.play()
	}
	m.watchTimeline(m.timeline, m.generation)

	if prevTl != nil {
		prevTl.Kill()
	}
	if prevEl != nil && prevEl != el {
		// Same-ID swaps must not unmount: the surface matches
		// children by ID, so removing the old element would take the
		// fresh one with it.
		if prevEl.ID() != el.ID() {
			m.surf.Unmount(prevEl)
			if taken := m.session.TakeElement(prevEl.ID()); taken != nil {
				taken.Release()
			}
		}
		prevEl.Release()
	}

	m.prefetchNext()
	m.logger.Info("item_displayed", "item", item.ID, "state", m.state.String())
}

func (m *Machine) play() {
	if m.timeline == nil || m.playing {
		return
	}
	m.playing = true
	m.timeline.Play()
	if m.state == StateReady {
		m.transition(StateCycling, "play")
	}
}

// buildKeyframes converts the director's waypoints into timeline
// keyframes. Invalid waypoints are skipped with a warning; if nothing
// survives, the item is shown at a static centered position.
func (m *Machine) buildKeyframes(item *media.MediaItem, el *Element) []animation.Keyframe {
	focal := item.Focal
	if focal.IsZero() {
		if img := el.Image(); img != nil {
			if suggested, ok := analyzer.SuggestFocalPoints(img); ok {
				m.logger.Debug("focal_suggested", "item", item.ID,
					"main_x", suggested.Main.X, "main_y", suggested.Main.Y)
				focal = suggested
			}
		}
	}

	wps, err := m.calc.Waypoints(item.Size, m.viewport,
		[]media.FocalPoint{focal.Secondary, focal.Main}, m.calc.Variance)
	if err != nil {
		m.logger.Warn("waypoints_failed", "item", item.ID, "error", err)
		return staticKeyframes()
	}

	kfs := make([]animation.Keyframe, 0, len(wps))
	offset := 0.0
	for i, wp := range wps {
		if i > 0 {
			offset += wp.Duration
		}
		kf := animation.Keyframe{Position: wp.Position, Scale: wp.Scale, Offset: offset}
		if !kf.Valid() {
			m.logger.Warn("waypoint_skipped", "item", item.ID, "index", i)
			continue
		}
		kfs = append(kfs, kf)
	}
	if len(kfs) == 0 {
		return staticKeyframes()
	}
	// The pass must span the full duration even if the tail was
	// skipped.
	kfs[len(kfs)-1].Offset = 1
	return kfs
}

func staticKeyframes() []animation.Keyframe {
	still := animation.Keyframe{Scale: 1}
	end := still
	end.Offset = 1
	return []animation.Keyframe{still, end}
}

// prefetchNext warms the provider cache for the upcoming item at low
// priority. Failures are silent; the real load will report them.
func (m *Machine) prefetchNext() {
	next := m.session.Peek()
	cur := m.session.Current()
	if next == nil || (cur != nil && next.ID == cur.ID) {
		return
	}
	it := *next
	width := m.viewport.Width
	go func() {
		ctx := m.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, m.cfg.LoadTimeout)
		defer cancel()
		_, _ = m.provider.Fetch(ctx, it.VariantFor(int(width)).URL, false)
	}()
}

func (m *Machine) watchTimeline(tl animation.Timeline, gen uint64) {
	go func() {
		<-tl.Done()
		m.disp.submit(event{kind: eventTimelineDone, generation: gen})
	}()
}

func (m *Machine) pauseTimeline() {
	if m.timeline != nil {
		m.timeline.Pause()
	}
}

func (m *Machine) resumeTimeline() {
	if m.timeline != nil && m.playing {
		m.timeline.Resume()
	} else if m.timeline != nil {
		m.play()
	}
}

func (m *Machine) activeID() string {
	if cur := m.session.Current(); cur != nil {
		return cur.ID
	}
	return ""
}

// transition applies a state change if the lifecycle graph allows it.
// Must be called with mu held.
func (m *Machine) transition(to State, reason string) bool {
	if m.state == to {
		return true
	}
	if !canTransition(m.state, to) {
		m.logger.Warn("transition_rejected", "from", m.state.String(), "to", to.String(), "reason", reason)
		return false
	}
	m.logger.Debug("transition", "from", m.state.String(), "to", to.String(), "reason", reason)
	m.state = to
	m.lastActive = time.Now()
	return true
}

// frameTarget applies interpolated frames to the surface as a CSS
// affine transform.
type frameTarget struct {
	surf surface.Surface
}

func (t frameTarget) ApplyFrame(f animation.Frame) {
	mtx := transform.Translation(f.Position.X, f.Position.Y).
		Mul(transform.UniformScaling(f.Scale))
	t.surf.SetTransform(mtx.AffineString())
}

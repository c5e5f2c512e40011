package cycle

import (
	"image"
	"math/rand"
	"sync"
	"time"

	"github.com/ivlev/herocycle/internal/assets"
	"github.com/ivlev/herocycle/internal/media"
)

// ItemMeta accumulates per-item bookkeeping over the life of a session.
type ItemMeta struct {
	LoadedAt     time.Time
	DisplayCount int
	Failures     int
}

// Element is a decoded media item mounted on a surface. It owns exactly
// one object URL; Release revokes it at most once no matter how many
// eviction paths reach it.
type Element struct {
	itemID    string
	asset     *assets.Asset
	objectURL string
	registry  *assets.ObjectURLRegistry
	once      sync.Once
}

func newElement(itemID string, a *assets.Asset, reg *assets.ObjectURLRegistry) *Element {
	return &Element{
		itemID:    itemID,
		asset:     a,
		objectURL: reg.Create(a.Blob),
		registry:  reg,
	}
}

func (e *Element) ID() string { return e.itemID }

// ObjectURL returns the display URL for this element. Invalid after
// Release.
func (e *Element) ObjectURL() string { return e.objectURL }

// Image returns the decoded pixels, or nil for video blobs.
func (e *Element) Image() image.Image {
	if e.asset == nil {
		return nil
	}
	return e.asset.Image
}

func (e *Element) Release() {
	e.once.Do(func() {
		e.registry.Revoke(e.objectURL)
	})
}

// Session holds the shuffled playlist and everything the machine has
// materialized for it: metadata and decoded elements. Not safe for
// concurrent use; the machine serializes access through its event loop.
type Session struct {
	items    []media.MediaItem
	pos      int
	meta     map[string]*ItemMeta
	elements map[string]*Element
}

// NewSession copies and shuffles items. The shuffle happens once per
// session, so a full cycle visits every item before repeating.
func NewSession(items []media.MediaItem, rng *rand.Rand) *Session {
	dup := make([]media.MediaItem, len(items))
	copy(dup, items)
	if rng != nil {
		rng.Shuffle(len(dup), func(i, j int) {
			dup[i], dup[j] = dup[j], dup[i]
		})
	}
	return &Session{
		items:    dup,
		pos:      -1,
		meta:     make(map[string]*ItemMeta),
		elements: make(map[string]*Element),
	}
}

func (s *Session) Len() int { return len(s.items) }

// Index reports the position of the active item, or -1 before the
// first advance.
func (s *Session) Index() int { return s.pos }

// Current returns the active item, or nil before the first advance.
func (s *Session) Current() *media.MediaItem {
	if s.pos < 0 || s.pos >= len(s.items) {
		return nil
	}
	return &s.items[s.pos]
}

// Advance moves to the next item in shuffle order, wrapping at the end.
func (s *Session) Advance() *media.MediaItem {
	if len(s.items) == 0 {
		return nil
	}
	s.pos = (s.pos + 1) % len(s.items)
	return &s.items[s.pos]
}

// Peek returns the item that the next Advance would activate without
// moving the cursor. Used for low-priority prefetch.
func (s *Session) Peek() *media.MediaItem {
	if len(s.items) == 0 {
		return nil
	}
	next := (s.pos + 1) % len(s.items)
	if s.pos < 0 {
		next = 0
	}
	return &s.items[next]
}

func (s *Session) metaFor(id string) *ItemMeta {
	m, ok := s.meta[id]
	if !ok {
		m = &ItemMeta{}
		s.meta[id] = m
	}
	return m
}

func (s *Session) RecordLoad(id string)    { s.metaFor(id).LoadedAt = time.Now() }
func (s *Session) RecordDisplay(id string) { s.metaFor(id).DisplayCount++ }
func (s *Session) RecordFailure(id string) { s.metaFor(id).Failures++ }

// Meta returns a copy of the metadata for id, zero-valued if the item
// was never touched.
func (s *Session) Meta(id string) ItemMeta {
	if m, ok := s.meta[id]; ok {
		return *m
	}
	return ItemMeta{}
}

// CacheElement stores a decoded element for id, releasing any element
// it displaces.
func (s *Session) CacheElement(id string, el *Element) {
	if prev, ok := s.elements[id]; ok && prev != el {
		prev.Release()
	}
	s.elements[id] = el
}

// TakeElement removes and returns the cached element for id, or nil.
// Ownership passes to the caller.
func (s *Session) TakeElement(id string) *Element {
	el, ok := s.elements[id]
	if !ok {
		return nil
	}
	delete(s.elements, id)
	return el
}

// Destroy releases every cached element. Safe to call more than once.
func (s *Session) Destroy() {
	for id, el := range s.elements {
		el.Release()
		delete(s.elements, id)
	}
}

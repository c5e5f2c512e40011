// Package surface defines the rendering-surface contract the cycle
// machine drives: the active media element is always the container's
// first child, and transform state is published as CSS custom
// properties.
package surface

import "sync"

// Element is an opaque handle to a decoded media element.
type Element interface {
	ID() string
}

// Surface is the boundary to the real DOM container. Implementations
// must tolerate mounting an element that is already present (it moves
// to the front) and unmounting one that is not (no-op).
type Surface interface {
	// Mount inserts el as the container's first child.
	Mount(el Element)
	// Unmount removes el from the container.
	Unmount(el Element)
	// SetProperties merges CSS custom properties into the container.
	SetProperties(props map[string]string)
	// SetTransform applies a CSS transform to the first child.
	SetTransform(affine string)
}

// Memory is an in-memory Surface for headless runs and tests. It
// records the child order, the merged property map, and every
// transform applied.
type Memory struct {
	mu         sync.Mutex
	children   []Element
	props      map[string]string
	transforms []string
}

// NewMemory returns an empty in-memory surface.
func NewMemory() *Memory {
	return &Memory{props: make(map[string]string)}
}

func (m *Memory) Mount(el Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(el)
	m.children = append([]Element{el}, m.children...)
}

func (m *Memory) Unmount(el Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(el)
}

func (m *Memory) removeLocked(el Element) {
	for i, c := range m.children {
		if c.ID() == el.ID() {
			m.children = append(m.children[:i], m.children[i+1:]...)
			return
		}
	}
}

func (m *Memory) SetProperties(props map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range props {
		m.props[k] = v
	}
}

func (m *Memory) SetTransform(affine string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transforms = append(m.transforms, affine)
}

// FirstChild returns the currently displayed element, or nil.
func (m *Memory) FirstChild() Element {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.children) == 0 {
		return nil
	}
	return m.children[0]
}

// ChildCount returns the number of mounted elements.
func (m *Memory) ChildCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.children)
}

// Property returns the current value of a CSS custom property.
func (m *Memory) Property(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.props[name]
}

// Transforms returns every transform applied so far.
func (m *Memory) Transforms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.transforms))
	copy(out, m.transforms)
	return out
}

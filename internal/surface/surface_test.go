package surface

import "testing"

type fakeElement string

func (f fakeElement) ID() string { return string(f) }

func TestMountKeepsNewestFirst(t *testing.T) {
	m := NewMemory()

	m.Mount(fakeElement("a"))
	m.Mount(fakeElement("b"))

	if got := m.FirstChild().ID(); got != "b" {
		t.Errorf("expected first child b, got %s", got)
	}
	if m.ChildCount() != 2 {
		t.Errorf("expected 2 children, got %d", m.ChildCount())
	}

	// Re-mounting an existing element moves it to the front without
	// duplicating it.
	m.Mount(fakeElement("a"))
	if got := m.FirstChild().ID(); got != "a" {
		t.Errorf("expected first child a after re-mount, got %s", got)
	}
	if m.ChildCount() != 2 {
		t.Errorf("re-mount duplicated the element: %d children", m.ChildCount())
	}
}

func TestUnmount(t *testing.T) {
	m := NewMemory()
	m.Mount(fakeElement("a"))

	m.Unmount(fakeElement("a"))
	if m.ChildCount() != 0 {
		t.Errorf("expected empty surface, got %d children", m.ChildCount())
	}

	// Unmounting an absent element is a no-op.
	m.Unmount(fakeElement("ghost"))
}

func TestSetPropertiesMerges(t *testing.T) {
	m := NewMemory()

	m.SetProperties(map[string]string{"--scale": "1.1", "--x-overflow": "50px"})
	m.SetProperties(map[string]string{"--scale": "1.3"})

	if got := m.Property("--scale"); got != "1.3" {
		t.Errorf("expected --scale 1.3, got %q", got)
	}
	if got := m.Property("--x-overflow"); got != "50px" {
		t.Errorf("expected --x-overflow preserved, got %q", got)
	}
}

func TestTransformsRecorded(t *testing.T) {
	m := NewMemory()
	m.SetTransform("matrix(1, 0, 0, 1, 0, 0)")
	m.SetTransform("matrix(1.1, 0, 0, 1.1, 5, -3)")

	got := m.Transforms()
	if len(got) != 2 || got[1] != "matrix(1.1, 0, 0, 1.1, 5, -3)" {
		t.Errorf("unexpected transform log: %v", got)
	}
}

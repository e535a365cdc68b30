package h2d

import (
	"image"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// FrameBufferManager owns named offscreen images. The renderer draws the
// screen pass into one of them before lights are applied; scripts and
// external drawables can create their own.
type FrameBufferManager struct {
	buffers map[string]*ebiten.Image
	current string
}

// NewFrameBufferManager creates an empty manager.
func NewFrameBufferManager() *FrameBufferManager {
	return &FrameBufferManager{buffers: make(map[string]*ebiten.Image)}
}

// Create allocates a w x h buffer under name, replacing any previous one.
func (m *FrameBufferManager) Create(name string, w, h int) *ebiten.Image {
	m.Dispose(name)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := ebiten.NewImageWithOptions(image.Rect(0, 0, w, h), &ebiten.NewImageOptions{Unmanaged: true})
	m.buffers[name] = img
	return img
}

// Get returns the buffer registered under name.
func (m *FrameBufferManager) Get(name string) (*ebiten.Image, bool) {
	img, ok := m.buffers[name]
	return img, ok
}

// Begin clears the named buffer and makes it current. It returns nil when
// no such buffer exists.
func (m *FrameBufferManager) Begin(name string) *ebiten.Image {
	img, ok := m.buffers[name]
	if !ok {
		return nil
	}
	img.Clear()
	m.current = name
	return img
}

// End clears the current buffer name.
func (m *FrameBufferManager) End() {
	m.current = ""
}

// Current returns the name passed to the last Begin, or "".
func (m *FrameBufferManager) Current() string {
	return m.current
}

// Resize reallocates the named buffer when its size differs from w x h.
func (m *FrameBufferManager) Resize(name string, w, h int) *ebiten.Image {
	if img, ok := m.buffers[name]; ok {
		b := img.Bounds()
		if b.Dx() == w && b.Dy() == h {
			return img
		}
	}
	return m.Create(name, w, h)
}

// Size returns the size of the named buffer.
func (m *FrameBufferManager) Size(name string) (w, h int) {
	img, ok := m.buffers[name]
	if !ok {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// Names returns the buffer names in sorted order.
func (m *FrameBufferManager) Names() []string {
	names := make([]string, 0, len(m.buffers))
	for n := range m.buffers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dispose deallocates the named buffer. Unknown names are ignored.
func (m *FrameBufferManager) Dispose(name string) {
	img, ok := m.buffers[name]
	if !ok {
		return
	}
	img.Deallocate()
	delete(m.buffers, name)
	if m.current == name {
		m.current = ""
	}
}

// DisposeAll deallocates every buffer.
func (m *FrameBufferManager) DisposeAll() {
	for name := range m.buffers {
		m.Dispose(name)
	}
}

package frame

import (
	"image"
	"sync"
)

// canvasPool hands out *image.RGBA canvases keyed by frame size, so a
// reel reuses the same few allocations for every image.
type canvasPool struct {
	mu    sync.RWMutex
	sizes map[image.Rectangle]*sync.Pool
}

var pool = &canvasPool{
	sizes: make(map[image.Rectangle]*sync.Pool),
}

func (p *canvasPool) lookup(rect image.Rectangle, create bool) *sync.Pool {
	p.mu.RLock()
	sp := p.sizes[rect]
	p.mu.RUnlock()
	if sp != nil || !create {
		return sp
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if sp = p.sizes[rect]; sp == nil {
		sp = &sync.Pool{New: func() any { return image.NewRGBA(rect) }}
		p.sizes[rect] = sp
	}
	return sp
}

// get returns a canvas with stale contents; Render overwrites every pixel.
func (p *canvasPool) get(rect image.Rectangle) *image.RGBA {
	return p.lookup(rect, true).Get().(*image.RGBA)
}

func (p *canvasPool) put(img *image.RGBA) {
	if img == nil {
		return
	}
	if sp := p.lookup(img.Rect, false); sp != nil {
		sp.Put(img)
	}
}

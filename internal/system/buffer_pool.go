package system

import (
	"image"
	"sync"
)

// CanvasPool переиспользует холсты *image.RGBA между страницами.
// Страницы одного документа обычно одного размера, поэтому пул
// ключуется размером холста.
type CanvasPool struct {
	pools map[image.Point]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = NewCanvasPool()

func NewCanvasPool() *CanvasPool {
	return &CanvasPool{pools: make(map[image.Point]*sync.Pool)}
}

// GetImage возвращает холст с началом координат в (0,0) и размером rect.
// Содержимое холста не очищается.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect.Size())
}

// PutImage возвращает холст в пул.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *CanvasPool) Get(size image.Point) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[size]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[size]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(image.Rectangle{Max: size})
				},
			}
			p.pools[size] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *CanvasPool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	size := img.Rect.Size()

	p.mu.RLock()
	pool, exists := p.pools[size]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}

package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool предоставляет механизмы повторного использования image.RGBA
// по размеру, чтобы длинный рендер не выделял новый буфер на каждый кадр
// и не нагружал Garbage Collector (GC).
type ImagePool struct {
	mu    sync.RWMutex
	pools map[image.Point]*sync.Pool

	allocs atomic.Int64
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

// GetImage берет буфер нужного размера из общего пула.
func GetImage(rect image.Rectangle) *image.RGBA { return globalPool.Get(rect) }

// PutImage возвращает буфер в общий пул.
func PutImage(img *image.RGBA) { globalPool.Put(img) }

// Allocations показывает, сколько буферов общему пулу пришлось создать.
func Allocations() int64 { return globalPool.allocs.Load() }

func (p *ImagePool) pool(size image.Point) *sync.Pool {
	p.mu.RLock()
	pool, ok := p.pools[size]
	p.mu.RUnlock()
	if ok {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Double check
	if pool, ok = p.pools[size]; ok {
		return pool
	}
	pool = &sync.Pool{New: func() any {
		p.allocs.Add(1)
		return image.NewRGBA(image.Rectangle{Max: size})
	}}
	p.pools[size] = pool
	return pool
}

// Get возвращает *image.RGBA из пула или создает новый, если в пуле нет
// подходящего по размеру объекта. Начало координат (0,0), содержимое
// не определено.
func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	return p.pool(rect.Size()).Get().(*image.RGBA)
}

// Put возвращает *image.RGBA в пул. Буферы со смещенным началом
// координат не принимаются.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	p.pool(img.Rect.Size()).Put(img)
}

package system

import (
	"image"
	"sync"
)

// GrayPool recycles *image.Gray buffers keyed by their bounds so that long
// frame sequences of identical size do not allocate a fresh grid per frame.
type GrayPool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = NewGrayPool()

func NewGrayPool() *GrayPool {
	return &GrayPool{pools: make(map[image.Rectangle]*sync.Pool)}
}

// GetGray returns a gray image with the given bounds from the shared pool.
// Pixel contents are unspecified; callers overwrite every pixel.
func GetGray(rect image.Rectangle) *image.Gray {
	return globalPool.Get(rect)
}

// PutGray hands img back to the shared pool.
func PutGray(img *image.Gray) {
	globalPool.Put(img)
}

func (p *GrayPool) Get(rect image.Rectangle) *image.Gray {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Повторная проверка под блокировкой
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewGray(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.Gray)
}

func (p *GrayPool) Put(img *image.Gray) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}

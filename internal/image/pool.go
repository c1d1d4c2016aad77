package image

import "sync"

// Pool is a thread-safe pool for reusing Buf instances.
//
// Pool groups buffers by shape so the working copy each step dithers is
// reused across the steps and jobs of a pipeline.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Buf
	maxSize int // max buffers per bucket
}

// poolKey identifies a bucket of identically shaped buffers.
type poolKey struct {
	width    int
	height   int
	channels int
}

// NewPool creates a new pool retaining at most maxPerBucket buffers of each
// shape. A maxPerBucket of 0 means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*Buf),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed buffer of the given shape, reusing a pooled one when
// available.
func (p *Pool) Get(width, height, channels int) (*Buf, error) {
	key := poolKey{width: width, height: height, channels: channels}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		buf := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.mu.Unlock()

		clear(buf.samples)
		return buf, nil
	}
	p.mu.Unlock()

	return NewBuf(width, height, channels)
}

// Put returns a buffer to the pool. The caller must not use buf afterwards.
func (p *Pool) Put(buf *Buf) {
	if buf == nil {
		return
	}

	key := poolKey{width: buf.width, height: buf.height, channels: buf.channels}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, buf)
}

// Len returns the number of pooled buffers across all shapes.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, bucket := range p.buckets {
		n += len(bucket)
	}
	return n
}

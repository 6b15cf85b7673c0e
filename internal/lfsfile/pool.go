// internal/lfsfile/pool.go
package lfsfile

import "sync"

// Slots is the maximum number of simultaneously open files.
const Slots = 8

// Pool is a fixed arena of file records.
// Acquire and Release are serialized by the pool; a scan and its
// allocation mark happen under one lock, so two callers never get the
// same slot.
type Pool struct {
	mu    sync.Mutex
	files [Slots]File
}

// NewPool returns a pool with every slot free.
func NewPool() *Pool {
	p := &Pool{}
	for i := range p.files {
		p.files[i].sys.pool = p
		p.files[i].sys.index = i
	}
	return p
}

// Acquire returns the first free slot, zeroed and with a fresh
// descriptor table. It returns false when every slot is in use;
// exhaustion is an ordinary condition for the caller to handle.
func (p *Pool) Acquire() (*File, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.files {
		f := &p.files[i]
		if f.sys.allocated {
			continue
		}
		f.reset()
		f.sys.allocated = true
		return f, true
	}
	return nil, false
}

// Release returns f to the pool. The record is zeroed on the next
// Acquire, not here. f must be a live handle from this pool.
func (p *Pool) Release(f *File) {
	if f == nil {
		panic("lfsfile: release of nil handle")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if f.sys.pool != p || f != &p.files[f.sys.index] {
		panic("lfsfile: release of foreign handle")
	}
	if !f.sys.allocated {
		panic("lfsfile: release of free slot")
	}
	f.sys.allocated = false
}

// InUse counts allocated slots.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for i := range p.files {
		if p.files[i].sys.allocated {
			n++
		}
	}
	return n
}

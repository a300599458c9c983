// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package mem

import (
	"fmt"
	"sync"

	"github.com/platinasystems/oscar/mmio"
)

// Addr is a 32 bit bus address as seen by the DMA controller.
type Addr uint32

func (a Addr) String() string { return fmt.Sprintf("0x%08x", uint32(a)) }

// Block is an allocation within a Region.
type Block struct {
	Addr Addr
	Len  uint32
	// Bytes aliases the region memory at Addr.
	Bytes []byte
}

// Region is a named, contiguous span of the bus address space.
type Region struct {
	Name string
	Base Addr
	Size uint32

	w mmio.Window

	mu   sync.Mutex
	heap heap
}

// NewRegion returns a region of the given window's length at base.
func NewRegion(name string, base Addr, w mmio.Window) (*Region, error) {
	size := w.Len()
	if size == 0 {
		return nil, fmt.Errorf("%s: empty region", name)
	}
	if uint64(base)+uint64(size) > 1<<32 {
		return nil, fmt.Errorf("%s: %v+0x%x exceeds address space",
			name, base, size)
	}
	r := &Region{Name: name, Base: base, Size: size, w: w}
	r.heap.init(size)
	return r, nil
}

// End is the first address after the region.
func (r *Region) End() uint64 { return uint64(r.Base) + uint64(r.Size) }

func (r *Region) Contains(a Addr) bool {
	return a >= r.Base && uint64(a) < r.End()
}

func (r *Region) Window() mmio.Window { return r.w }

// Alloc returns n bytes aligned to align (a power of 2, 0 for none).
func (r *Region) Alloc(n, align uint32) (Block, error) {
	if align&(align-1) != 0 {
		return Block{}, fmt.Errorf("%s: alignment %d: %w", r.Name, align,
			ErrAlignment)
	}
	r.mu.Lock()
	o, ok := r.heap.get(n, align)
	r.mu.Unlock()
	if !ok {
		return Block{}, fmt.Errorf("%s: %d bytes: %w", r.Name, n, ErrNoSpace)
	}
	b := r.w.Bytes()[o : o+n : o+n]
	return Block{Addr: r.Base + Addr(o), Len: n, Bytes: b}, nil
}

func (r *Region) Free(b Block) error {
	if !r.Contains(b.Addr) {
		return fmt.Errorf("%s: %v: %w", r.Name, b.Addr, ErrBadFree)
	}
	r.mu.Lock()
	ok := r.heap.put(uint32(b.Addr - r.Base))
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %v: %w", r.Name, b.Addr, ErrBadFree)
	}
	return nil
}

// Usage summarizes the region allocator.
func (r *Region) Usage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heap.String()
}

func (r *Region) String() string {
	return fmt.Sprintf("%s: %v-%08x", r.Name, r.Base, r.End()-1)
}

// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package mem

import (
	"fmt"
	"sort"
)

// hole is a free span of a region in byte offsets.
type hole struct {
	offset, size uint32
}

// heap is a first fit allocator of region offsets. Free holes are kept
// sorted by offset and coalesced on put.
type heap struct {
	holes []hole
	used  map[uint32]uint32
	max   uint32
}

func (h *heap) init(size uint32) {
	h.max = size
	h.holes = append(h.holes[:0], hole{0, size})
	h.used = make(map[uint32]uint32)
}

func roundUp(x, align uint32) uint32 { return (x + align - 1) &^ (align - 1) }

// get returns the offset of n bytes aligned to align (a power of 2).
func (h *heap) get(n, align uint32) (offset uint32, ok bool) {
	if n == 0 {
		n = 1
	}
	if align == 0 {
		align = 1
	}
	for i, x := range h.holes {
		o := roundUp(x.offset, align)
		pad := o - x.offset
		if uint64(pad)+uint64(n) > uint64(x.size) {
			continue
		}
		rest := hole{o + n, x.size - pad - n}
		var repl []hole
		if pad > 0 {
			repl = append(repl, hole{x.offset, pad})
		}
		if rest.size > 0 {
			repl = append(repl, rest)
		}
		h.holes = append(h.holes[:i], append(repl, h.holes[i+1:]...)...)
		h.used[o] = n
		return o, true
	}
	return
}

// put frees the allocation at offset.
func (h *heap) put(offset uint32) bool {
	n, found := h.used[offset]
	if !found {
		return false
	}
	delete(h.used, offset)
	i := sort.Search(len(h.holes), func(i int) bool {
		return h.holes[i].offset > offset
	})
	h.holes = append(h.holes, hole{})
	copy(h.holes[i+1:], h.holes[i:])
	h.holes[i] = hole{offset, n}
	// merge with successor then predecessor
	if i+1 < len(h.holes) && h.holes[i].offset+h.holes[i].size == h.holes[i+1].offset {
		h.holes[i].size += h.holes[i+1].size
		h.holes = append(h.holes[:i+1], h.holes[i+2:]...)
	}
	if i > 0 && h.holes[i-1].offset+h.holes[i-1].size == h.holes[i].offset {
		h.holes[i-1].size += h.holes[i].size
		h.holes = append(h.holes[:i], h.holes[i+1:]...)
	}
	return true
}

func (h *heap) free() (n uint32) {
	for _, x := range h.holes {
		n += x.size
	}
	return
}

func (h *heap) String() string {
	if h.max == 0 {
		return "empty"
	}
	free := h.free()
	return fmt.Sprintf("used %d, free %d, capacity %d",
		h.max-free, free, h.max)
}

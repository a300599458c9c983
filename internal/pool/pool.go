// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pool hands out indices of a fixed size arena.
package pool

import (
	"errors"
	"math/bits"
)

var (
	ErrEmpty = errors.New("pool: no free index")
	ErrFree  = errors.New("pool: index not allocated")
)

// Pool of indices [0, Cap()). The arena itself belongs to the caller;
// Pool only records which slots are in use.
type Pool struct {
	// Bitmap of used indices.
	used []uint64
	// Number of used indices.
	n   uint
	max uint
}

func New(max uint) *Pool {
	return &Pool{
		used: make([]uint64, (max+63)/64),
		max:  max,
	}
}

func index(i uint) (w uint, m uint64) { return i / 64, 1 << (i % 64) }

// GetIndex returns the lowest free index.
func (p *Pool) GetIndex() (uint, error) {
	if p.n >= p.max {
		return 0, ErrEmpty
	}
	for w, x := range p.used {
		if ^x == 0 {
			continue
		}
		i := uint(w*64 + bits.TrailingZeros64(^x))
		if i >= p.max {
			break
		}
		p.used[w] |= 1 << (i % 64)
		p.n++
		return i, nil
	}
	return 0, ErrEmpty
}

// PutIndex frees i.
func (p *Pool) PutIndex(i uint) error {
	if !p.IsUsed(i) {
		return ErrFree
	}
	w, m := index(i)
	p.used[w] &^= m
	p.n--
	return nil
}

func (p *Pool) IsUsed(i uint) bool {
	if i >= p.max {
		return false
	}
	w, m := index(i)
	return p.used[w]&m != 0
}

func (p *Pool) Len() uint { return p.n }
func (p *Pool) Cap() uint { return p.max }

// Reset frees all indices.
func (p *Pool) Reset() {
	for i := range p.used {
		p.used[i] = 0
	}
	p.n = 0
}

// Foreach calls f with each used index in increasing order.
func (p *Pool) Foreach(f func(i uint)) {
	for w, x := range p.used {
		for x != 0 {
			b := uint(bits.TrailingZeros64(x))
			f(uint(w)*64 + b)
			x &^= 1 << b
		}
	}
}

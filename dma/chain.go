// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dma

import (
	"fmt"

	"github.com/platinasystems/oscar/internal/pool"
	"github.com/platinasystems/oscar/mem"
)

// Handle names an allocated chain of a Pool.
type Handle int

// Chain memory layout, relative to the chain base:
//
//	0	sync flag (32 bits)
//	4	moves+1 source descriptors
//	...	moves+1 destination descriptors
//
// The extra descriptor of each array is the terminal sync move.
const syncFlagBytes = 4

type chain struct {
	base  mem.Addr
	moves int
}

// Pool is a fixed arena of chains placed in DMA addressable memory.
// It is not safe for concurrent use; each pipeline owns its pool.
type Pool struct {
	space  *mem.Space
	region *mem.Region
	arena  mem.Block

	// Address of the all-ones word copied by every sync move.
	ones mem.Addr

	maxMoves   int
	chainBytes uint32
	chains     []chain
	index      *pool.Pool
}

// NewPool carves nChains chains of up to maxMoves moves out of region.
func NewPool(space *mem.Space, region *mem.Region, nChains, maxMoves int) (*Pool, error) {
	if nChains <= 0 || maxMoves <= 0 || maxMoves > 0xffff {
		return nil, fmt.Errorf("pool %d chains of %d moves: %w",
			nChains, maxMoves, ErrInvalidCount)
	}
	p := &Pool{
		space:    space,
		region:   region,
		maxMoves: maxMoves,
		chains:   make([]chain, nChains),
		index:    pool.New(uint(nChains)),
	}
	desc := uint32(maxMoves+1) * DescriptorBytes
	p.chainBytes = (syncFlagBytes + 2*desc + 3) &^ 3
	arena, err := region.Alloc(4+uint32(nChains)*p.chainBytes, 4)
	if err != nil {
		return nil, err
	}
	p.arena = arena
	p.ones = arena.Addr
	if err = space.Store32(p.ones, ^uint32(0)); err != nil {
		region.Free(arena)
		return nil, err
	}
	for i := range p.chains {
		p.chains[i].base = arena.Addr + 4 + mem.Addr(uint32(i)*p.chainBytes)
	}
	return p, nil
}

// Close returns the arena to its region.
func (p *Pool) Close() error {
	if p.arena.Len == 0 {
		return nil
	}
	err := p.region.Free(p.arena)
	p.arena = mem.Block{}
	return err
}

func (p *Pool) Cap() int       { return len(p.chains) }
func (p *Pool) Allocated() int { return int(p.index.Len()) }
func (p *Pool) MaxMoves() int  { return p.maxMoves }

// Alloc returns a zeroed chain.
func (p *Pool) Alloc() (Handle, error) {
	i, err := p.index.GetIndex()
	if err != nil {
		return -1, ErrNoFreeChain
	}
	c := &p.chains[i]
	c.moves = 0
	b, err := p.space.Slice(c.base, p.chainBytes)
	if err != nil {
		p.index.PutIndex(i)
		return -1, err
	}
	for j := range b {
		b[j] = 0
	}
	return Handle(i), nil
}

// Release returns the chain to the pool. The handle must not be used
// again; a second release of the same handle returns ErrNotAllocated.
// The chain is released even if clearing its sync flag fails.
func (p *Pool) Release(h Handle) error {
	c, err := p.chain(h)
	if err != nil {
		return err
	}
	c.moves = 0
	ferr := p.space.Store32(c.base, 0)
	if err = p.index.PutIndex(uint(h)); err != nil {
		return err
	}
	if ferr != nil {
		return fmt.Errorf("chain %d: sync flag: %w", h, ferr)
	}
	return nil
}

func (p *Pool) chain(h Handle) (*chain, error) {
	if h < 0 || !p.index.IsUsed(uint(h)) {
		return nil, fmt.Errorf("chain %d: %w", h, ErrNotAllocated)
	}
	return &p.chains[h], nil
}

// Moves returns the number of moves built into the chain.
func (p *Pool) Moves(h Handle) (int, error) {
	c, err := p.chain(h)
	if err != nil {
		return 0, err
	}
	return c.moves, nil
}

// SyncFlagAddr is the address written by the chain's terminal descriptor.
func (p *Pool) SyncFlagAddr(h Handle) (mem.Addr, error) {
	c, err := p.chain(h)
	if err != nil {
		return 0, err
	}
	return c.base, nil
}

// SyncFlag reads the chain's sync flag from DMA memory.
func (p *Pool) SyncFlag(h Handle) (uint32, error) {
	c, err := p.chain(h)
	if err != nil {
		return 0, err
	}
	return p.space.Load32(c.base)
}

// Arrays returns the source and destination descriptor array bases.
func (p *Pool) Arrays(h Handle) (src, dst mem.Addr, err error) {
	c, err := p.chain(h)
	if err != nil {
		return
	}
	return p.srcArray(c), p.dstArray(c), nil
}

func (p *Pool) srcArray(c *chain) mem.Addr { return c.base + syncFlagBytes }
func (p *Pool) dstArray(c *chain) mem.Addr {
	return p.srcArray(c) + mem.Addr((p.maxMoves+1)*DescriptorBytes)
}

func (p *Pool) descAddr(c *chain, write bool, i int) mem.Addr {
	base := p.srcArray(c)
	if write {
		base = p.dstArray(c)
	}
	return base + mem.Addr(i*DescriptorBytes)
}

func (p *Pool) putDesc(c *chain, i int, d *Descriptor) error {
	b, err := p.space.Slice(p.descAddr(c, d.IsWrite(), i), DescriptorBytes)
	if err == nil {
		d.Put(b)
	}
	return err
}

// Descriptors decodes the source and destination descriptors of the
// chain including the terminal pair if the chain was started.
func (p *Pool) Descriptors(h Handle) (src, dst []Descriptor, err error) {
	c, err := p.chain(h)
	if err != nil {
		return
	}
	for i := 0; i <= p.maxMoves; i++ {
		var s, d Descriptor
		sb, err := p.space.Slice(p.descAddr(c, false, i), DescriptorBytes)
		if err != nil {
			return nil, nil, err
		}
		db, err := p.space.Slice(p.descAddr(c, true, i), DescriptorBytes)
		if err != nil {
			return nil, nil, err
		}
		s.Get(sb)
		d.Get(db)
		if s.Config&Enable == 0 {
			break
		}
		src = append(src, s)
		dst = append(dst, d)
	}
	return
}

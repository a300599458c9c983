// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dma

import (
	"fmt"
	"math"

	"github.com/platinasystems/oscar/mem"
)

// Endpoint is one side of a move. XModify and YModify are byte strides;
// after each element the address advances by XModify except after the
// last element of a row where it advances by YModify.
type Endpoint struct {
	Addr     mem.Addr
	WordSize uint
	XCount   uint
	XModify  int
	// YCount of 0 or 1 is a one dimensional transfer.
	YCount  uint
	YModify int
}

// Move is a matched source and destination transfer.
type Move struct {
	Src, Dst Endpoint
}

func (e *Endpoint) rows() uint {
	if e.YCount == 0 {
		return 1
	}
	return e.YCount
}

// Bytes is the number of bytes moved by the endpoint.
func (e *Endpoint) Bytes() uint32 {
	return uint32(e.XCount) * uint32(e.rows()) * uint32(e.WordSize)
}

func (e *Endpoint) descriptor(write bool) (d Descriptor, err error) {
	wd, err := WordSizeConfig(e.WordSize)
	if err != nil {
		return
	}
	if e.XCount == 0 || e.XCount > math.MaxUint16 ||
		e.rows() > math.MaxUint16 {
		err = fmt.Errorf("%d x %d: %w", e.XCount, e.YCount,
			ErrInvalidCount)
		return
	}
	if !fitsInt16(e.XModify) || !fitsInt16(e.YModify) {
		err = fmt.Errorf("%+d/%+d: %w", e.XModify, e.YModify,
			ErrInvalidStride)
		return
	}
	d = Descriptor{
		StartAddr: e.Addr,
		Config:    Enable | wd | FlowArray | NextDescSize,
		XCount:    uint16(e.XCount),
		XModify:   int16(e.XModify),
		YCount:    uint16(e.rows()),
		YModify:   int16(e.YModify),
	}
	if write {
		d.Config |= Write
	}
	if e.rows() > 1 {
		d.Config |= TwoD
	}
	return
}

func fitsInt16(i int) bool { return i >= math.MinInt16 && i <= math.MaxInt16 }

// span returns the lowest address and the number of bytes from there to
// the end of the highest element touched by the endpoint.
func (e *Endpoint) span() (lo int64, n uint32) {
	x, y := int64(e.XCount)-1, int64(e.rows())-1
	row := x*int64(e.XModify) + int64(e.YModify)
	lo, hi := int64(e.Addr), int64(e.Addr)
	for _, a := range []int64{
		int64(e.Addr) + x*int64(e.XModify),
		int64(e.Addr) + y*row,
		int64(e.Addr) + y*row + x*int64(e.XModify),
	} {
		if a < lo {
			lo = a
		}
		if a > hi {
			hi = a
		}
	}
	return lo, uint32(hi - lo + int64(e.WordSize))
}

// checkSpan rejects endpoints that leave mapped memory or touch the pool
// arena, whose sync flags may only be written by terminal descriptors.
func (p *Pool) checkSpan(e *Endpoint) error {
	lo, n := e.span()
	if lo < 0 || lo+int64(n) > 1<<32 {
		return fmt.Errorf("%v: %w", e.Addr, mem.ErrUnmapped)
	}
	base := int64(p.arena.Addr)
	if lo < base+int64(p.arena.Len) && base < lo+int64(n) {
		return fmt.Errorf("%v+%d: %w", e.Addr, n, ErrChainMemory)
	}
	_, err := p.space.Slice(mem.Addr(lo), n)
	return err
}

// Add2DMove appends a move to the chain. Nothing is written to the chain
// unless the move is valid.
func (p *Pool) Add2DMove(h Handle, m Move) error {
	c, err := p.chain(h)
	if err != nil {
		return err
	}
	if c.moves >= p.maxMoves {
		return fmt.Errorf("chain %d: %w", h, ErrChainFull)
	}
	src, err := m.Src.descriptor(false)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	dst, err := m.Dst.descriptor(true)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if m.Src.WordSize != m.Dst.WordSize || src.XCount != dst.XCount ||
		src.YCount != dst.YCount {
		return fmt.Errorf("%d*%dx%d != %d*%dx%d: %w",
			m.Src.WordSize, src.XCount, src.YCount,
			m.Dst.WordSize, dst.XCount, dst.YCount,
			ErrAsymmetricMove)
	}
	if err = p.checkSpan(&m.Src); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err = p.checkSpan(&m.Dst); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if err = p.putDesc(c, c.moves, &src); err != nil {
		return err
	}
	if err = p.putDesc(c, c.moves, &dst); err != nil {
		return err
	}
	c.moves++
	return nil
}

// AddMove appends a move with the same geometry on both sides:
// count elements of wordSize bytes per row, yCount rows.
func (p *Pool) AddMove(h Handle, src, dst mem.Addr, count, wordSize uint,
	xStride int, yCount uint, yStride int) error {
	e := Endpoint{
		WordSize: wordSize,
		XCount:   count,
		XModify:  xStride,
		YCount:   yCount,
		YModify:  yStride,
	}
	m := Move{Src: e, Dst: e}
	m.Src.Addr, m.Dst.Addr = src, dst
	return p.Add2DMove(h, m)
}

// AddMemCpy appends a contiguous copy of n bytes using the widest word
// size that divides both addresses and n. Copies of more than 65535
// words are laid out as rows.
func (p *Pool) AddMemCpy(h Handle, dst, src mem.Addr, n uint32) error {
	if n == 0 {
		return fmt.Errorf("0 bytes: %w", ErrInvalidCount)
	}
	wd := uint32(4)
	for (uint32(src)|uint32(dst)|n)&(wd-1) != 0 {
		wd >>= 1
	}
	words := n / wd
	x, y := words, uint32(1)
	if words > math.MaxUint16 {
		// largest row length that divides the word count
		for x = math.MaxUint16; words%x != 0; x-- {
		}
		y = words / x
	}
	if y > math.MaxUint16 {
		return fmt.Errorf("%d bytes: %w", n, ErrInvalidCount)
	}
	return p.AddMove(h, src, dst, uint(x), uint(wd), int(wd), uint(y),
		int(wd))
}

// start appends the terminal sync move and clears the sync flag.
// It returns the descriptor array bases for the backend.
func (p *Pool) start(h Handle) (src, dst mem.Addr, err error) {
	c, err := p.chain(h)
	if err != nil {
		return
	}
	if c.moves == 0 {
		err = fmt.Errorf("chain %d: %w", h, ErrEmptyChain)
		return
	}
	term := Enable | WordSize32 | DataIntEnable | SyncExec | FlowStop
	s := Descriptor{
		StartAddr: p.ones,
		Config:    term,
		XCount:    1,
		XModify:   4,
		YCount:    1,
	}
	d := s
	d.StartAddr = c.base
	d.Config |= Write
	if err = p.putDesc(c, c.moves, &s); err != nil {
		return
	}
	if err = p.putDesc(c, c.moves, &d); err != nil {
		return
	}
	if err = p.space.Store32(c.base, 0); err != nil {
		return
	}
	return p.srcArray(c), p.dstArray(c), nil
}

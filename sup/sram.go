// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package sup

import (
	"errors"
	"fmt"

	"github.com/platinasystems/oscar/mem"
)

const sramAlign = 4

func (s *Sup) alloc(name string, n uint32) (mem.Block, error) {
	r, err := s.space.Region(name)
	if err != nil {
		return mem.Block{}, err
	}
	if n > r.Size {
		return mem.Block{}, fmt.Errorf("%s: %d bytes: %w", name, n,
			ErrTooLarge)
	}
	return r.Alloc(n, sramAlign)
}

func (s *Sup) AllocL1DataA(n uint32) (mem.Block, error) { return s.alloc(mem.L1DataA, n) }
func (s *Sup) AllocL1DataB(n uint32) (mem.Block, error) { return s.alloc(mem.L1DataB, n) }
func (s *Sup) AllocL1Instr(n uint32) (mem.Block, error) { return s.alloc(mem.L1Instr, n) }
func (s *Sup) AllocScratch(n uint32) (mem.Block, error) { return s.alloc(mem.Scratch, n) }
func (s *Sup) AllocSDRAM(n uint32) (mem.Block, error)   { return s.alloc(mem.SDRAM, n) }

// AllocL1Data tries data bank A, then B.
func (s *Sup) AllocL1Data(n uint32) (mem.Block, error) {
	b, err := s.AllocL1DataA(n)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, mem.ErrNoSpace) && !errors.Is(err, ErrTooLarge) {
		return b, err
	}
	return s.AllocL1DataB(n)
}

// Free returns a block to whichever bank it came from.
func (s *Sup) Free(b mem.Block) error {
	for _, r := range s.space.Regions() {
		if r.Contains(b.Addr) {
			return r.Free(b)
		}
	}
	return fmt.Errorf("%v: %w", b.Addr, mem.ErrBadFree)
}

// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package mem models the bus address space seen by the DMA controller as a
// set of named regions and provides fixed-region allocators over them.
package mem

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnmapped  = errors.New("address not mapped")
	ErrOverlap   = errors.New("regions overlap")
	ErrNoSpace   = errors.New("out of memory")
	ErrBadFree   = errors.New("not allocated")
	ErrAlignment = errors.New("invalid alignment")
	ErrNoRegion  = errors.New("no such region")
)

// Space is an ordered set of non-overlapping regions.
type Space struct {
	regions []*Region
}

func NewSpace(regions ...*Region) (*Space, error) {
	s := new(Space)
	for _, r := range regions {
		if err := s.Add(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Space) Add(r *Region) error {
	for _, x := range s.regions {
		if uint64(r.Base) < x.End() && uint64(x.Base) < r.End() {
			return fmt.Errorf("%s, %s: %w", r, x, ErrOverlap)
		}
		if r.Name == x.Name {
			return fmt.Errorf("%s: duplicate region", r.Name)
		}
	}
	s.regions = append(s.regions, r)
	sort.Slice(s.regions, func(i, j int) bool {
		return s.regions[i].Base < s.regions[j].Base
	})
	return nil
}

func (s *Space) Regions() []*Region { return s.regions }

// Region returns the region with the given name.
func (s *Space) Region(name string) (*Region, error) {
	for _, r := range s.regions {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNoRegion)
}

// find returns the region holding [a, a+n) and the offset of a within it.
func (s *Space) find(a Addr, n uint32) (*Region, uint32, error) {
	i := sort.Search(len(s.regions), func(i int) bool {
		return uint64(s.regions[i].Base) > uint64(a)
	})
	if i > 0 {
		r := s.regions[i-1]
		if uint64(a)+uint64(n) <= r.End() {
			return r, uint32(a - r.Base), nil
		}
	}
	return nil, 0, fmt.Errorf("%v+%d: %w", a, n, ErrUnmapped)
}

// Slice returns the n bytes at a; they must lie within one region.
func (s *Space) Slice(a Addr, n uint32) ([]byte, error) {
	r, o, err := s.find(a, n)
	if err != nil {
		return nil, err
	}
	return r.w.Bytes()[o : o+n : o+n], nil
}

// Read copies len(p) bytes from a into p.
func (s *Space) Read(a Addr, p []byte) error {
	b, err := s.Slice(a, uint32(len(p)))
	if err == nil {
		copy(p, b)
	}
	return err
}

// Write copies p to a.
func (s *Space) Write(a Addr, p []byte) error {
	b, err := s.Slice(a, uint32(len(p)))
	if err == nil {
		copy(b, p)
	}
	return err
}

func (s *Space) Load16(a Addr) (uint16, error) {
	r, o, err := s.find(a, 2)
	if err != nil {
		return 0, err
	}
	return r.w.Load16(o)
}

func (s *Space) Store16(a Addr, v uint16) error {
	r, o, err := s.find(a, 2)
	if err != nil {
		return err
	}
	return r.w.Store16(o, v)
}

func (s *Space) Load32(a Addr) (uint32, error) {
	r, o, err := s.find(a, 4)
	if err != nil {
		return 0, err
	}
	return r.w.Load32(o)
}

func (s *Space) Store32(a Addr, v uint32) error {
	r, o, err := s.find(a, 4)
	if err != nil {
		return err
	}
	return r.w.Store32(o, v)
}

// Close releases every region window.
func (s *Space) Close() (err error) {
	for _, r := range s.regions {
		if e := r.w.Close(); e != nil && err == nil {
			err = e
		}
	}
	s.regions = nil
	return
}

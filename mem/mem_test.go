// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package mem

import (
	"bytes"
	"errors"
	"testing"

	"github.com/platinasystems/oscar/mmio"
)

func newSpace(t *testing.T) *Space {
	t.Helper()
	s, err := Map(DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDefaultMap(t *testing.T) {
	s := newSpace(t)
	defer s.Close()
	if n := len(s.Regions()); n != len(DefaultLayout) {
		t.Fatal("wrong:", n)
	}
	if s.Regions()[0].Name != SDRAM {
		t.Error("wrong order:", s.Regions()[0])
	}
	r, err := s.Region(Scratch)
	if err != nil {
		t.Fatal(err)
	}
	if r.Base != 0xffb00000 || r.Size != 4096 {
		t.Error("wrong:", r)
	}
	if _, err = s.Region("l3"); !errors.Is(err, ErrNoRegion) {
		t.Error("wrong:", err)
	}
}

func TestReadWrite(t *testing.T) {
	s := newSpace(t)
	defer s.Close()
	want := []byte("leanXcam")
	if err := s.Write(0xff800010, want); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, len(want))
	if err := s.Read(0xff800010, got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Error("wrong:", got)
	}
	if err := s.Store32(0xff900000, 0xffffffff); err != nil {
		t.Fatal(err)
	}
	if v, err := s.Load32(0xff900000); err != nil || v != 0xffffffff {
		t.Error("wrong:", v, err)
	}
}

func TestUnmapped(t *testing.T) {
	s := newSpace(t)
	defer s.Close()
	if err := s.Write(0x0, []byte{1}); !errors.Is(err, ErrUnmapped) {
		t.Error("wrong:", err)
	}
	// crossing the end of l1a
	if _, err := s.Slice(0xff800000+32<<10-2, 4); !errors.Is(err, ErrUnmapped) {
		t.Error("wrong:", err)
	}
	if _, err := s.Load32(0xffb01000); !errors.Is(err, ErrUnmapped) {
		t.Error("wrong:", err)
	}
}

func TestOverlap(t *testing.T) {
	a, _ := NewRegion("a", 0x1000, mmio.New(0x1000))
	b, _ := NewRegion("b", 0x1800, mmio.New(0x1000))
	if _, err := NewSpace(a, b); !errors.Is(err, ErrOverlap) {
		t.Error("wrong:", err)
	}
}

func TestAlloc(t *testing.T) {
	r, err := NewRegion("r", 0x2000, mmio.New(256))
	if err != nil {
		t.Fatal(err)
	}
	a, err := r.Alloc(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Alloc(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	if a.Addr != 0x2000 || b.Addr != 0x2010 {
		t.Error("wrong:", a.Addr, b.Addr)
	}
	if len(b.Bytes) != 16 {
		t.Error("wrong:", len(b.Bytes))
	}
	if _, err = r.Alloc(512, 0); !errors.Is(err, ErrNoSpace) {
		t.Error("wrong:", err)
	}
	if _, err = r.Alloc(8, 3); !errors.Is(err, ErrAlignment) {
		t.Error("wrong:", err)
	}
	if err = r.Free(a); err != nil {
		t.Fatal(err)
	}
	if err = r.Free(a); !errors.Is(err, ErrBadFree) {
		t.Error("wrong:", err)
	}
	if err = r.Free(b); err != nil {
		t.Fatal(err)
	}
	if got := r.Usage(); got != "used 0, free 256, capacity 256" {
		t.Error("wrong:", got)
	}
	// everything coalesced back into one hole
	if c, err := r.Alloc(256, 0); err != nil || c.Addr != 0x2000 {
		t.Error("wrong:", c.Addr, err)
	}
}

// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pool

import (
	"reflect"
	"testing"
)

func TestGetPut(t *testing.T) {
	p := New(3)
	for want := uint(0); want < 3; want++ {
		i, err := p.GetIndex()
		if err != nil || i != want {
			t.Fatal("wrong:", i, err)
		}
	}
	if _, err := p.GetIndex(); err != ErrEmpty {
		t.Error("wrong:", err)
	}
	if err := p.PutIndex(1); err != nil {
		t.Fatal(err)
	}
	if err := p.PutIndex(1); err != ErrFree {
		t.Error("wrong:", err)
	}
	if err := p.PutIndex(7); err != ErrFree {
		t.Error("wrong:", err)
	}
	if i, err := p.GetIndex(); err != nil || i != 1 {
		t.Error("wrong:", i, err)
	}
	if p.Len() != 3 || p.Cap() != 3 {
		t.Error("wrong:", p.Len(), p.Cap())
	}
}

func TestWide(t *testing.T) {
	p := New(130)
	for i := 0; i < 130; i++ {
		if _, err := p.GetIndex(); err != nil {
			t.Fatal(i, err)
		}
	}
	if _, err := p.GetIndex(); err != ErrEmpty {
		t.Error("wrong:", err)
	}
	p.PutIndex(64)
	p.PutIndex(129)
	var got []uint
	p.Reset()
	p.GetIndex()
	p.GetIndex()
	p.Foreach(func(i uint) { got = append(got, i) })
	if !reflect.DeepEqual(got, []uint{0, 1}) {
		t.Error("wrong:", got)
	}
}

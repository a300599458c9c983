// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package dep orders items so that each follows everything it depends on.
package dep

import (
	"errors"
	"sort"
)

var ErrCycle = errors.New("dependency cycle")

type Dep struct {
	Name string

	Deps, AntiDeps []*Dep

	// User ordering.  We sort by increasing value of Order.
	Order uint32

	// Index into elts saved *before* sorting.
	index int
}

type Deps struct {
	elts      []*Dep
	isOrdered bool
	order     []int
	err       error
}

func (d *Deps) Add(h ...*Dep) {
	for _, x := range h {
		x.index = len(d.elts)
		d.elts = append(d.elts, x)
	}
	d.isOrdered = false
}

func (d *Deps) Len() int { return len(d.elts) }

// Ordered returns the items, dependencies first.
func (d *Deps) Ordered() ([]*Dep, error) {
	if err := d.sort(); err != nil {
		return nil, err
	}
	l := make([]*Dep, len(d.order))
	for i, x := range d.order {
		l[i] = d.elts[x]
	}
	return l, nil
}

// Closure returns h and everything it transitively depends on,
// dependencies first.
func (d *Deps) Closure(h *Dep) ([]*Dep, error) {
	l, err := d.Ordered()
	if err != nil {
		return nil, err
	}
	need := map[*Dep]bool{h: true}
	for i := len(l) - 1; i >= 0; i-- {
		if need[l[i]] {
			for _, x := range d.edges(l[i]) {
				need[x] = true
			}
		}
	}
	var r []*Dep
	for _, x := range l {
		if need[x] {
			r = append(r, x)
		}
	}
	return r, nil
}

// edges returns what h depends on, AntiDeps of others included.
func (d *Deps) edges(h *Dep) []*Dep {
	e := append([]*Dep(nil), h.Deps...)
	for _, x := range d.elts {
		for _, a := range x.AntiDeps {
			if a == h {
				e = append(e, x)
			}
		}
	}
	return e
}

func (d *Deps) sort() error {
	if d.isOrdered {
		return d.err
	}
	d.isOrdered = true
	byOrder := make([]*Dep, len(d.elts))
	copy(byOrder, d.elts)
	// Respect user's ordering, otherwise maintain array order.
	sort.SliceStable(byOrder, func(i, j int) bool {
		return byOrder[i].Order < byOrder[j].Order
	})
	const (
		unseen = iota
		visiting
		done
	)
	state := make(map[*Dep]int, len(d.elts))
	d.order = d.order[:0]
	var visit func(h *Dep) error
	visit = func(h *Dep) error {
		switch state[h] {
		case visiting:
			return ErrCycle
		case done:
			return nil
		}
		state[h] = visiting
		for _, x := range d.edges(h) {
			if err := visit(x); err != nil {
				return err
			}
		}
		state[h] = done
		d.order = append(d.order, h.index)
		return nil
	}
	d.err = nil
	for _, h := range byOrder {
		if err := visit(h); err != nil {
			d.err = err
			break
		}
	}
	return d.err
}

// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package sup

import "fmt"

// Clock is a 32 bit cycle counter derived from a monotonic nanosecond
// source. It wraps about every 8.6 seconds at 500 MHz.
type Clock struct {
	hz    uint32
	epoch int64
	ns    func() int64
}

func newClock(hz uint32, ns func() int64) *Clock {
	if hz < 1000000 {
		hz = 1000000
	}
	return &Clock{hz: hz, epoch: ns(), ns: ns}
}

func (c *Clock) Hz() uint32 { return c.hz }

func (c *Clock) Cycles() uint32 {
	t := c.ns() - c.epoch
	hz := int64(c.hz)
	return uint32(t/1e9*hz + t%1e9*hz/1e9)
}

func (c *Clock) CyclesToMicroseconds(cycles uint32) uint32 {
	return cycles / (c.hz / 1000000)
}

func (c *Clock) String() string {
	return fmt.Sprintf("%d.%03d MHz", c.hz/1000000, c.hz%1000000/1000)
}

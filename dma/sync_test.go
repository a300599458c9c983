// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dma

import (
	"errors"
	"testing"
	"time"

	"github.com/platinasystems/oscar/internal/assert"
)

// fakeClock is a 500 MHz counter that advances step cycles per read.
type fakeClock struct {
	now, step uint32
	reads     int
}

func (c *fakeClock) Cycles() uint32 {
	c.reads++
	c.now += c.step
	return c.now
}

func (c *fakeClock) CyclesToMicroseconds(n uint32) uint32 { return n / 500 }

func never() (uint32, error) { return 0, nil }

func TestIterationLimit(t *testing.T) {
	assert := assert.Assert{TB: t}
	polls := 0
	err := IterationLimit(10).Wait(func() (uint32, error) {
		polls++
		return 0, nil
	})
	assert.Error(err, ErrTimeout)
	assert.Equal(polls, 10)

	polls = 0
	assert.Nil(IterationLimit(10).Wait(func() (uint32, error) {
		polls++
		if polls == 3 {
			return 1, nil
		}
		return 0, nil
	}))
	assert.Equal(polls, 3)

	bad := errors.New("bus error")
	assert.Error(IterationLimit(10).Wait(func() (uint32, error) {
		return 0, bad
	}), bad)

	// a zero limit still reads the flag once
	polls = 0
	assert.Nil(IterationLimit(0).Wait(func() (uint32, error) {
		polls++
		return 1, nil
	}))
	assert.Equal(polls, 1)
	polls = 0
	assert.Error(IterationLimit(0).Wait(func() (uint32, error) {
		polls++
		return 0, nil
	}), ErrTimeout)
	assert.Equal(polls, 1)
}

func TestDeadline(t *testing.T) {
	assert := assert.Assert{TB: t}
	// 1ms per clock read
	c := &fakeClock{step: 500 * 1000}
	d := Deadline{Timeout: 20 * time.Millisecond, Clock: c}
	assert.Error(d.Wait(never), ErrTimeout)
	assert.Equal(c.reads, 21)

	c = &fakeClock{step: 500}
	d.Clock = c
	assert.Nil(d.Wait(func() (uint32, error) {
		if c.reads > 5 {
			return ^uint32(0), nil
		}
		return 0, nil
	}))
}

func TestDeadlineCounterWrap(t *testing.T) {
	assert := assert.Assert{TB: t}
	// a quarter of the counter range per read, from just before wrap
	c := &fakeClock{now: 0xf0000000, step: 1 << 30}
	d := Deadline{Timeout: DefaultSyncTimeout, Clock: c}
	assert.Error(d.Wait(never), ErrTimeout)
	// 2147483us per read
	assert.Equal(c.reads, 11)
}

// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dma

import (
	"fmt"
	"time"
)

const (
	// DefaultSyncIterations bounds an IterationLimit wait.
	DefaultSyncIterations = 0xffffffff
	// DefaultSyncTimeout bounds a Deadline wait. The flag of a
	// finished transfer has been seen to never assert on the target,
	// so every wait is bounded.
	DefaultSyncTimeout = 20000 * time.Millisecond
)

// Clock is a free running cycle counter.
type Clock interface {
	Cycles() uint32
	CyclesToMicroseconds(cycles uint32) uint32
}

// Flag reads a sync flag word.
type Flag func() (uint32, error)

// Waiter busy waits for a flag to become non-zero. Implementations must
// not block or yield; the wait is expected to be short.
type Waiter interface {
	Wait(flag Flag) error
}

// IterationLimit polls the flag at most this many times, and at least
// once.
type IterationLimit uint64

func (n IterationLimit) Wait(flag Flag) error {
	for i := uint64(0); i == 0 || i < uint64(n); i++ {
		v, err := flag()
		if err != nil {
			return err
		}
		if v != 0 {
			return nil
		}
	}
	return fmt.Errorf("%d polls: %w", uint64(n), ErrTimeout)
}

func (n IterationLimit) String() string { return fmt.Sprint(uint64(n), " polls") }

// Deadline polls the flag until Timeout has elapsed on Clock.
type Deadline struct {
	Timeout time.Duration
	Clock   Clock
}

func (d Deadline) Wait(flag Flag) error {
	limit := uint64(d.Timeout / time.Microsecond)
	start := d.Clock.Cycles()
	var base uint64
	for {
		v, err := flag()
		if err != nil {
			return err
		}
		if v != 0 {
			return nil
		}
		now := d.Clock.Cycles()
		dt := now - start
		us := base + uint64(d.Clock.CyclesToMicroseconds(dt))
		if us >= limit {
			return fmt.Errorf("%v: %w", d.Timeout, ErrTimeout)
		}
		// rebase before the 32 bit counter difference wraps
		if dt >= 1<<31 {
			base, start = us, now
		}
	}
}

func (d Deadline) String() string { return d.Timeout.String() }

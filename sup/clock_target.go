// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

//go:build target

package sup

import "golang.org/x/sys/unix"

// DefaultClock scales the raw monotonic clock to the core clock.
func DefaultClock(coreHz uint32) *Clock {
	return newClock(coreHz, func() int64 {
		var ts unix.Timespec
		if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
			panic(err)
		}
		return ts.Nano()
	})
}

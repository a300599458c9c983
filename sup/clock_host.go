// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

//go:build !target

package sup

import "time"

// DefaultClock on the host counts microseconds regardless of coreHz.
func DefaultClock(coreHz uint32) *Clock {
	start := time.Now()
	return newClock(1000000, func() int64 {
		return int64(time.Since(start))
	})
}

// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dma

import "github.com/platinasystems/oscar/mem"

// Backend executes started chains. Kick returns once the transfer has
// been handed off; completion is signalled only through the chain's sync
// flag, which the terminal descriptor pair writes.
type Backend interface {
	Kick(src, dst mem.Addr) error
	String() string
}

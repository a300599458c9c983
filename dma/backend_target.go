// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

//go:build target

package dma

import (
	"github.com/platinasystems/oscar/mem"
	"github.com/platinasystems/oscar/mmio"
)

// DefaultBackend maps the memory DMA registers from the system memory
// device.
func DefaultBackend(space *mem.Space) (Backend, error) {
	w, err := mmio.Mmap(mem.DevMem, MDMAPage, 0x1000)
	if err != nil {
		return nil, err
	}
	return NewHardware(w, MDMAPageOffset)
}

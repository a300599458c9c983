// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package mmio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mmap maps size bytes of the named device file starting at offset.
// Errors are returned here rather than on first access.
func Mmap(path string, offset int64, size uint32) (*Mem, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := unix.Mmap(int(f.Fd()), offset, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s@0x%x: %w", path, offset, err)
	}
	return &Mem{b: b, unmap: unix.Munmap}, nil
}

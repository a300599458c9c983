// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

//go:build target

package mem

import "github.com/platinasystems/oscar/mmio"

const DevMem = "/dev/mem"

func window(l Layout) (mmio.Window, error) {
	return mmio.Mmap(DevMem, int64(l.Base), l.Size)
}

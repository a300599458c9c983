// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

//go:build !target

package dma

import "github.com/platinasystems/oscar/mem"

// DefaultBackend emulates the controller on the host.
func DefaultBackend(space *mem.Space) (Backend, error) {
	return NewEmulator(space), nil
}

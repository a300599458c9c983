// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Oscar is a multi-call diagnostic program for the camera DSP. Run it as
// "oscar COMMAND", or link a command name to it.
package main

import (
	"github.com/platinasystems/oscar/cmd/cpld"
	"github.com/platinasystems/oscar/cmd/cycles"
	"github.com/platinasystems/oscar/cmd/dma"
	"github.com/platinasystems/oscar/cmd/iocmd"
	"github.com/platinasystems/oscar/internal/goes"
)

var Goes = goes.Selection{
	"cpld":   cpld.Main,
	"cycles": cycles.Main,
	"dma":    dma.Main,
	"io":     iocmd.Main,
}

func main() {
	Goes.Main()
}

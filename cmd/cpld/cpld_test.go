// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package cpld

import (
	"context"
	"strings"
	"testing"

	"github.com/platinasystems/oscar"
	"github.com/platinasystems/oscar/cpld"
	"github.com/platinasystems/oscar/internal/assert"
	"github.com/platinasystems/oscar/internal/goes"
	"github.com/platinasystems/oscar/mmio"
)

func run(args ...string) (string, error) {
	w := new(strings.Builder)
	ctx := goes.WithPath(goes.WithOutput(context.Background(), w), "oscar")
	ctx, args = goes.Preempt(ctx, args)
	ctx = goes.WithPath(ctx, "cpld")
	err := Main(ctx, args...)
	return w.String(), err
}

func TestCommands(t *testing.T) {
	assert := assert.Assert{TB: t}
	c := cpld.NewShadowed(mmio.New(16))
	defer func(f func(*oscar.Framework) (*cpld.Cpld, error)) {
		Open = f
	}(Open)
	Open = func(*oscar.Framework) (*cpld.Cpld, error) { return c, nil }

	_, err := run("set", "2", "0x81")
	assert.Nil(err)
	_, err = run("fset", "2", "0x0c", "1")
	assert.Nil(err)
	out, err := run("get", "2")
	assert.Nil(err)
	assert.Equal(out, "0x8d\n")
	out, err = run("fget", "2", "0x04")
	assert.Nil(err)
	assert.Equal(out, "1\n")
	_, err = run("fset", "2", "0x80", "0")
	assert.Nil(err)
	out, _ = run("fget", "2", "0x80")
	assert.Equal(out, "0\n")

	_, err = run("get", "16")
	assert.Error(err, cpld.ErrBadRegister)
	_, err = run("set", "2")
	assert.Match(err.Error(), "usage: REG VALUE")
	_, err = run("set", "2", "0x100")
	assert.Match(err.Error(), "out of range")
	_, err = run("peek")
	assert.Match(err.Error(), "peek: unknown")
}

func TestNoDevice(t *testing.T) {
	_, err := run("-config", "/nonexistent/oscar.yaml", "get", "0")
	if err == nil {
		t.Error("no error")
	}
}

func TestHelp(t *testing.T) {
	assert := assert.Assert{TB: t}
	out, err := run("help")
	assert.Nil(err)
	assert.Match(out, "(?m)^  fset REG FIELD 0\\|1$")
	out, _ = run("complete", "f")
	assert.Equal(out, "fget\nfset\n")
}

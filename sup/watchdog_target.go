// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

//go:build target

package sup

import "golang.org/x/sys/unix"

func newWatchdog(dev string) watchdog { return &devWatchdog{dev: dev, fd: -1} }

// devWatchdog drives a linux watchdog device. Any write feeds it; writing
// the magic 'V' before close stops it.
type devWatchdog struct {
	dev string
	fd  int
}

func (w *devWatchdog) init() error {
	if w.fd >= 0 {
		return nil
	}
	fd, err := unix.Open(w.dev, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return err
	}
	w.fd = fd
	return nil
}

func (w *devWatchdog) keepAlive() error {
	if w.fd < 0 {
		return nil
	}
	_, err := unix.Write(w.fd, []byte{0})
	return err
}

func (w *devWatchdog) close() error {
	if w.fd < 0 {
		return nil
	}
	_, err := unix.Write(w.fd, []byte{'V'})
	if cerr := unix.Close(w.fd); err == nil {
		err = cerr
	}
	w.fd = -1
	return err
}

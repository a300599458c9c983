// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package sup

type watchdog interface {
	init() error
	keepAlive() error
	close() error
}

// nowatchdog is used where there is no watchdog.
type nowatchdog struct{}

func (nowatchdog) init() error      { return nil }
func (nowatchdog) keepAlive() error { return nil }
func (nowatchdog) close() error     { return nil }

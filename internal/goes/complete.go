// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func LastArg(args []string) (s string) {
	if len(args) > 0 {
		s = args[len(args)-1]
	}
	return
}

// CompleteFiles lists the files and directories prefixed by the last arg.
func CompleteFiles(args []string) (c []string) {
	ps := string(os.PathSeparator)
	c, _ = filepath.Glob(fmt.Sprint(LastArg(args), "*"))
	for i, fn := range c {
		if fi, err := os.Stat(fn); err == nil && fi.IsDir() {
			c[i] = fmt.Sprint(fn, ps)
		}
	}
	return
}

// CompleteParms completes the named parameters or, following one, a file
// name.
func CompleteParms(names []string, args []string) []string {
	if n := len(args); n > 1 {
		for _, s := range names {
			if args[n-2] == s {
				return CompleteFiles(args)
			}
		}
	}
	return CompleteStrings(names, args)
}

func CompleteStrings(l []string, args []string) (c []string) {
	arg := LastArg(args)
	for _, s := range l {
		if len(s) == 0 {
			continue
		}
		if len(arg) == 0 || strings.HasPrefix(s, arg) {
			c = append(c, s)
		}
	}
	return
}

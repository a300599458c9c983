// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import "context"

// Usage prints
//
//	usage: PATH ARGS...
//
// PATH is the context's command path without any "help" preemption.
// ARGS are printed as with fmt.Print, without separating spaces, except
// that a Selection prints its commands and a []string its lines, each
// indented.
func Usage(ctx context.Context, args ...interface{}) {
	o := OutputOf(ctx)
	o.Print("usage:")
	for i, s := range PathOf(ctx) {
		if i == 1 && s == "help" {
			continue
		}
		o.Print(" ", s)
	}
	if len(args) == 0 {
		o.Println()
		return
	}
	o.Print(" ")
	end := "\n"
	for _, v := range args {
		switch t := v.(type) {
		case Selection:
			end = ""
			for _, s := range t.Keys() {
				if len(s) > 0 {
					o.Println(" ", s)
				}
			}
		case []string:
			end = ""
			for _, s := range t {
				o.Println(" ", s)
			}
		default:
			o.Print(v)
		}
	}
	o.Print(end)
}

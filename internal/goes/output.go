// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import (
	"context"
	"fmt"
	"io"
)

type outputKey struct{}

// WithOutput sets the writer of the context's commands; a nil writer
// discards their output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// Output writes to the context's writer until the context is done.
type Output struct {
	context.Context
	w io.Writer
}

func OutputOf(ctx context.Context) Output {
	w, _ := ctx.Value(outputKey{}).(io.Writer)
	return Output{ctx, w}
}

func (o Output) Write(p []byte) (int, error) {
	if err := o.Err(); err != nil {
		return 0, err
	}
	if o.w == nil {
		return len(p), nil
	}
	return o.w.Write(p)
}

func (o Output) Print(args ...interface{})   { fmt.Fprint(o, args...) }
func (o Output) Println(args ...interface{}) { fmt.Fprintln(o, args...) }

func (o Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o, format, args...)
}

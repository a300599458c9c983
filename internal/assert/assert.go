// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package assert wraps a testing.Test or Benchmark with several assertions.
package assert

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"testing"
)

// Assert wraps a testing.Test or Benchmark with several assertions.
type Assert struct {
	testing.TB
}

// Nil asserts that there is no error
func (assert Assert) Nil(err error) {
	assert.Helper()
	if err != nil {
		assert.Fatal(err)
	}
}

// Error asserts that an error wraps the given error, or matches the given
// string or regex
func (assert Assert) Error(err error, v interface{}) {
	assert.Helper()
	switch t := v.(type) {
	case error:
		if !errors.Is(err, t) {
			assert.Fatalf("%v\n\texpected %q", err, t.Error())
		}
	case string:
		if err == nil || err.Error() != t {
			assert.Fatalf("%v\n\texpected %q", err, t)
		}
	case *regexp.Regexp:
		if err == nil || !t.MatchString(err.Error()) {
			assert.Fatalf("%v\n\texpected %q", err, t.String())
		}
	default:
		assert.Fatal("can't match:", t)
	}
}

// Equal asserts equality of the formatted values.
func (assert Assert) Equal(v, expect interface{}) {
	assert.Helper()
	if s, e := fmt.Sprint(v), fmt.Sprint(expect); s != e {
		assert.Fatalf("%q\n\t!= %q", s, e)
	}
}

// Match asserts string pattern match.
func (assert Assert) Match(s, pattern string) {
	assert.Helper()
	if !regexp.MustCompile(pattern).MatchString(s) {
		assert.Fatalf("%q\n\t!= @(%s)", s, pattern)
	}
}

// Bytes asserts content equality and reports the first difference.
func (assert Assert) Bytes(b, expect []byte) {
	assert.Helper()
	if bytes.Equal(b, expect) {
		return
	}
	if len(b) != len(expect) {
		assert.Fatalf("len %d != %d", len(b), len(expect))
	}
	for i := range b {
		if b[i] != expect[i] {
			assert.Fatalf("[%d] 0x%02x != 0x%02x", i, b[i], expect[i])
		}
	}
}

// True asserts flag.
func (assert Assert) True(t bool) {
	assert.Helper()
	if !t {
		assert.Fatal("not true")
	}
}

// False is not True.
func (assert Assert) False(t bool) {
	assert.Helper()
	if t {
		assert.Fatal("not false")
	}
}

// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package swr

import "fmt"

type SignalType int

const (
	Int SignalType = iota
	Float
	String
)

func (t SignalType) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	}
	return fmt.Sprint("SignalType(", int(t), ")")
}

func (t SignalType) format() string {
	switch t {
	case Float:
		return "%f"
	case String:
		return "%s"
	}
	return "%d"
}

type Signal struct {
	name   string
	t      SignalType
	format string
	value  interface{}
}

func (s *Signal) Name() string     { return s.name }
func (s *Signal) Type() SignalType { return s.t }

func (s *Signal) reset() {
	switch s.t {
	case Float:
		s.value = float32(0)
	case String:
		s.value = ""
	default:
		s.value = int32(0)
	}
}

// Set the value reported by the next Report. Integers are stored as 32
// bits, floats as single precision and strings truncated to
// MaxStringValue bytes.
func (s *Signal) Set(v interface{}) error {
	switch s.t {
	case Int:
		switch x := v.(type) {
		case int:
			s.value = int32(x)
		case int32:
			s.value = x
		case int64:
			s.value = int32(x)
		case uint32:
			s.value = int32(x)
		default:
			return fmt.Errorf("%s: %T: %w", s.name, v, ErrSignalType)
		}
	case Float:
		switch x := v.(type) {
		case float32:
			s.value = x
		case float64:
			s.value = float32(x)
		default:
			return fmt.Errorf("%s: %T: %w", s.name, v, ErrSignalType)
		}
	case String:
		x, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: %T: %w", s.name, v, ErrSignalType)
		}
		if len(x) > MaxStringValue {
			x = x[:MaxStringValue]
		}
		s.value = x
	default:
		return fmt.Errorf("%s: %v: %w", s.name, s.t, ErrSignalType)
	}
	return nil
}

func (s *Signal) Value() interface{} { return s.value }

func (s *Signal) String() string { return fmt.Sprintf(s.format, s.value) }

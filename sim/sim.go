// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package sim steps a simulated camera through its image sequence and
// notifies registered modules once per cycle.
package sim

import (
	"errors"
	"fmt"
)

const (
	MaxCycleCallbacks = 100
	TestImagePrefix   = "testdata/Bogen001_"
	TestImageSuffix   = ".bmp"
	TestImageDigits   = 5
)

var ErrTooManyCallbacks = errors.New("too many cycle callbacks")

type Sim struct {
	step      uint32
	callbacks []func()
}

func New() *Sim { return &Sim{} }

// RegisterCycleCallback adds f to the functions called by CycleStep.
func (s *Sim) RegisterCycleCallback(f func()) error {
	if len(s.callbacks) >= MaxCycleCallbacks {
		return ErrTooManyCallbacks
	}
	s.callbacks = append(s.callbacks, f)
	return nil
}

// CycleStep advances the time step then runs the callbacks in
// registration order.
func (s *Sim) CycleStep() {
	s.step++
	for _, f := range s.callbacks {
		f()
	}
}

func (s *Sim) TimeStep() uint32        { return s.step }
func (s *Sim) SetTimeStep(step uint32) { s.step = step }

// TestImageFileName is the test image of the current time step.
func (s *Sim) TestImageFileName() string { return TestImageFileName(s.step) }

func TestImageFileName(step uint32) string {
	return fmt.Sprintf("%s%0*d%s", TestImagePrefix, TestImageDigits, step,
		TestImageSuffix)
}

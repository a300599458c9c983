// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package swr writes stimuli files: one line of tab separated signal
// values per report, preceded once by a descriptor line of signal names.
package swr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/platinasystems/log"
	"github.com/platinasystems/oscar/internal/pool"
	"github.com/platinasystems/oscar/sim"
)

const (
	MaxWriters     = 10
	MaxSignals     = 20
	MaxStringValue = 200
)

var (
	ErrTooManyWriters = errors.New("too many stimuli writers")
	ErrTooManySignals = errors.New("too many signals")
	ErrSignalType     = errors.New("wrong signal value type")
	ErrReported       = errors.New("signals added after first report")
)

type Swr struct {
	sim     *sim.Sim
	index   *pool.Pool
	writers [MaxWriters]*Writer
}

// Create returns a stimuli writer module; if s is non-nil, cyclic
// writers report on each of its cycle steps.
func Create(s *sim.Sim) (*Swr, error) {
	swr := &Swr{sim: s, index: pool.New(MaxWriters)}
	if s != nil {
		if err := s.RegisterCycleCallback(swr.cycle); err != nil {
			return nil, err
		}
	}
	return swr, nil
}

func (swr *Swr) cycle() {
	swr.index.Foreach(func(i uint) {
		w := swr.writers[i]
		if !w.cyclic {
			return
		}
		if err := w.Report(); err != nil {
			log.Print("swr: ", w.name, ": ", err)
		}
	})
}

// Writers is the number of open writers.
func (swr *Swr) Writers() int { return int(swr.index.Len()) }

// CreateWriter creates the named stimuli file.
func (swr *Swr) CreateWriter(fn string, reportTime, reportCyclic bool) (*Writer, error) {
	if swr.index.Len() >= MaxWriters {
		return nil, ErrTooManyWriters
	}
	f, err := os.Create(fn)
	if err != nil {
		return nil, err
	}
	w, err := swr.NewWriter(fn, f, reportTime, reportCyclic)
	if err != nil {
		f.Close()
	}
	return w, err
}

// NewWriter reports to an open file.
func (swr *Swr) NewWriter(name string, wc io.WriteCloser, reportTime, reportCyclic bool) (*Writer, error) {
	i, err := swr.index.GetIndex()
	if err != nil {
		return nil, ErrTooManyWriters
	}
	w := &Writer{
		swr:    swr,
		index:  i,
		name:   name,
		wc:     wc,
		bw:     bufio.NewWriter(wc),
		time:   reportTime,
		cyclic: reportCyclic,
	}
	swr.writers[i] = w
	return w, nil
}

// Close closes every writer.
func (swr *Swr) Close() (err error) {
	swr.index.Foreach(func(i uint) {
		if werr := swr.writers[i].Close(); err == nil {
			err = werr
		}
	})
	return
}

type Writer struct {
	swr    *Swr
	index  uint
	name   string
	wc     io.WriteCloser
	bw     *bufio.Writer
	time   bool
	cyclic bool

	described bool
	signals   []*Signal
}

func (w *Writer) String() string { return w.name }

// AddSignal appends a column. format is a fmt verb for the value; empty
// selects the type default.
func (w *Writer) AddSignal(name string, t SignalType, format string) (*Signal, error) {
	if len(w.signals) >= MaxSignals {
		return nil, fmt.Errorf("%s: %w", w.name, ErrTooManySignals)
	}
	if w.described {
		return nil, fmt.Errorf("%s: %s: %w", w.name, name, ErrReported)
	}
	if format == "" {
		format = t.format()
	}
	s := &Signal{name: name, t: t, format: format}
	s.reset()
	w.signals = append(w.signals, s)
	return s, nil
}

func (w *Writer) Signals() []*Signal { return w.signals }

// Report writes the descriptor line on the first call then the current
// value of every signal.
func (w *Writer) Report() error {
	if !w.described {
		fmt.Fprint(w.bw, "!")
		if w.time {
			fmt.Fprint(w.bw, " [time]")
		}
		for _, s := range w.signals {
			fmt.Fprint(w.bw, " ", s.name)
		}
		fmt.Fprintln(w.bw)
		w.described = true
	}
	sep := ""
	if w.time && w.swr.sim != nil {
		fmt.Fprint(w.bw, w.swr.sim.TimeStep())
		sep = "\t"
	}
	for _, s := range w.signals {
		fmt.Fprint(w.bw, sep, s)
		sep = "\t"
	}
	fmt.Fprintln(w.bw)
	return w.bw.Flush()
}

// Close flushes and closes the writer's file and frees its slot.
func (w *Writer) Close() error {
	if w.wc == nil {
		return nil
	}
	err := w.bw.Flush()
	if cerr := w.wc.Close(); err == nil {
		err = cerr
	}
	w.wc = nil
	w.swr.writers[w.index] = nil
	w.swr.index.PutIndex(w.index)
	return err
}

// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dma

import (
	"errors"
	"fmt"
	"time"

	"github.com/platinasystems/log"
	"github.com/platinasystems/oscar/mem"
	"github.com/rcrowley/go-metrics"
)

// EngineConfig sizes an Engine. Zero values select the defaults.
type EngineConfig struct {
	Chains        int
	MovesPerChain int
	// Region names the DMA addressable region holding the chains.
	Region string
	// Waiter bounds Sync; nil selects a DefaultSyncTimeout deadline
	// on Clock.
	Waiter Waiter
	Clock  Clock
}

// Engine builds chains in a Pool, starts them on a Backend and waits for
// their sync flags.
type Engine struct {
	pool    *Pool
	backend Backend
	waiter  Waiter

	registry metrics.Registry
	allocs   metrics.Counter
	failed   metrics.Counter
	releases metrics.Counter
	moves    metrics.Counter
	bytes    metrics.Counter
	starts   metrics.Counter
	timeouts metrics.Counter
	used     metrics.Gauge
	sync     metrics.Timer
}

// New returns an engine on space. The chain pool is allocated from the
// configured region, mem.L1DataA by default.
func New(space *mem.Space, backend Backend, cfg EngineConfig) (*Engine, error) {
	if cfg.Chains == 0 {
		cfg.Chains = MaxChains
	}
	if cfg.MovesPerChain == 0 {
		cfg.MovesPerChain = MaxMovesPerChain
	}
	if cfg.Region == "" {
		cfg.Region = mem.L1DataA
	}
	if cfg.Waiter == nil {
		if cfg.Clock == nil {
			return nil, errors.New("dma: need a clock or waiter")
		}
		cfg.Waiter = Deadline{Timeout: DefaultSyncTimeout, Clock: cfg.Clock}
	}
	region, err := space.Region(cfg.Region)
	if err != nil {
		return nil, err
	}
	pool, err := NewPool(space, region, cfg.Chains, cfg.MovesPerChain)
	if err != nil {
		return nil, err
	}
	r := metrics.NewRegistry()
	return &Engine{
		pool:     pool,
		backend:  backend,
		waiter:   cfg.Waiter,
		registry: r,
		allocs:   metrics.NewRegisteredCounter("dma.alloc", r),
		failed:   metrics.NewRegisteredCounter("dma.alloc.fail", r),
		releases: metrics.NewRegisteredCounter("dma.release", r),
		moves:    metrics.NewRegisteredCounter("dma.moves", r),
		bytes:    metrics.NewRegisteredCounter("dma.bytes", r),
		starts:   metrics.NewRegisteredCounter("dma.starts", r),
		timeouts: metrics.NewRegisteredCounter("dma.sync.timeout", r),
		used:     metrics.NewRegisteredGauge("dma.chains.used", r),
		sync:     metrics.NewRegisteredTimer("dma.sync", r),
	}, nil
}

func (e *Engine) Pool() *Pool                { return e.pool }
func (e *Engine) Backend() Backend           { return e.backend }
func (e *Engine) Waiter() Waiter             { return e.waiter }
func (e *Engine) Registry() metrics.Registry { return e.registry }

// Close releases the chain arena.
func (e *Engine) Close() error { return e.pool.Close() }

// Alloc reserves a zeroed chain.
func (e *Engine) Alloc() (Handle, error) {
	h, err := e.pool.Alloc()
	if err != nil {
		e.failed.Inc(1)
		return h, err
	}
	e.allocs.Inc(1)
	e.used.Update(int64(e.pool.Allocated()))
	return h, nil
}

// Release returns the chain to the pool.
func (e *Engine) Release(h Handle) error {
	if err := e.pool.Release(h); err != nil {
		return err
	}
	e.releases.Inc(1)
	e.used.Update(int64(e.pool.Allocated()))
	return nil
}

func (e *Engine) added(n uint32) {
	e.moves.Inc(1)
	e.bytes.Inc(int64(n))
}

// Add2DMove appends a two dimensional move to the chain.
func (e *Engine) Add2DMove(h Handle, m Move) error {
	if err := e.pool.Add2DMove(h, m); err != nil {
		return err
	}
	e.added(m.Src.Bytes())
	return nil
}

// AddMove appends a move described by element count and strides. A
// yCount of 0 or 1 is one dimensional and the same geometry applies to
// both source and destination.
func (e *Engine) AddMove(h Handle, src, dst mem.Addr, count, wordSize uint,
	xStride int, yCount uint, yStride int) error {
	if err := e.pool.AddMove(h, src, dst, count, wordSize, xStride,
		yCount, yStride); err != nil {
		return err
	}
	e.added(uint32(count) * uint32(max(yCount, 1)) * uint32(wordSize))
	return nil
}

// AddMemCpy appends a contiguous copy of n bytes.
func (e *Engine) AddMemCpy(h Handle, dst, src mem.Addr, n uint32) error {
	if err := e.pool.AddMemCpy(h, dst, src, n); err != nil {
		return err
	}
	e.added(n)
	return nil
}

// Start terminates the chain with its sync move, clears the sync flag and
// hands the chain to the backend. Start does not wait; a chain may be
// started again after it completes.
func (e *Engine) Start(h Handle) error {
	src, dst, err := e.pool.start(h)
	if err != nil {
		return err
	}
	if err = e.backend.Kick(src, dst); err != nil {
		return fmt.Errorf("chain %d: %s: %w", h, e.backend, err)
	}
	e.starts.Inc(1)
	return nil
}

// Sync busy waits for the chain's sync flag. On timeout the transfer is
// left as it is and ErrTimeout is returned.
func (e *Engine) Sync(h Handle) error {
	if _, err := e.pool.chain(h); err != nil {
		return err
	}
	t0 := time.Now()
	err := e.waiter.Wait(func() (uint32, error) {
		return e.pool.SyncFlag(h)
	})
	e.sync.UpdateSince(t0)
	if errors.Is(err, ErrTimeout) {
		e.timeouts.Inc(1)
		log.Print("err", "dma: chain ", h, " sync ", e.waiter, ": ", err)
	}
	return err
}

// MemCpySync copies n bytes through a temporary chain and waits for it.
func (e *Engine) MemCpySync(dst, src mem.Addr, n uint32) (err error) {
	h, err := e.Alloc()
	if err != nil {
		return err
	}
	defer func() {
		if rerr := e.Release(h); err == nil {
			err = rerr
		}
	}()
	if err = e.AddMemCpy(h, dst, src, n); err != nil {
		return err
	}
	if err = e.Start(h); err != nil {
		return err
	}
	return e.Sync(h)
}

func (e *Engine) SyncFlag(h Handle) (uint32, error) { return e.pool.SyncFlag(h) }
func (e *Engine) Moves(h Handle) (int, error)       { return e.pool.Moves(h) }

// Descriptors decodes the chain's source and destination descriptors.
func (e *Engine) Descriptors(h Handle) (src, dst []Descriptor, err error) {
	return e.pool.Descriptors(h)
}

// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package dma schedules memory to memory block transfers as chains of
// controller descriptors and waits for their completion.
//
// A transfer is a pair of descriptor arrays, one for the read channel and
// one for the write channel of a memory DMA stream. Each chain ends with a
// sync move that copies an all-ones word into the chain's sync flag; the
// flag is polled to detect completion.
package dma

import "errors"

const (
	// MaxMovesPerChain is the default number of moves in one chain.
	MaxMovesPerChain = 4
	// MaxChains is the default number of chains in the pool.
	MaxChains = 2
)

var (
	ErrNoFreeChain     = errors.New("no free chain")
	ErrChainFull       = errors.New("chain full")
	ErrInvalidWordSize = errors.New("invalid word size")
	ErrInvalidCount    = errors.New("invalid element count")
	ErrInvalidStride   = errors.New("invalid stride")
	ErrAsymmetricMove  = errors.New("source and destination differ in size")
	ErrNotAllocated    = errors.New("chain not allocated")
	ErrEmptyChain      = errors.New("chain has no moves")
	ErrTimeout         = errors.New("timeout")
	ErrBusy            = errors.New("channel busy")
	ErrDescriptor      = errors.New("malformed descriptor chain")
	ErrChainMemory     = errors.New("overlaps chain memory")
)

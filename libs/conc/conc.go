// Package conc includes helpers for concurrency patterns that avoid some of the most common pitfalls.
package conc

import (
	"context"
	"sync"
)

// Testing should be set to true when running tests for code that use this package.
// This makes all functionality synchronous and makes tests deterministic.
var Testing bool

// Go runs the provided function in a go routine if Testing is not set,
// and synchronously if it is
func Go(f func()) {
	if !Testing {
		go f()
	} else {
		f()
	}
}

// GoCtx runs the provided function in a go routine with the provided context
// if Testing is not set, and synchronously if it is
func GoCtx(ctx context.Context, f func(ctx context.Context)) {
	if !Testing {
		go f(ctx)
	} else {
		f(ctx)
	}
}

// Parallel runs a set of functions concurrently and collects the first error.
type Parallel struct {
	wg   sync.WaitGroup
	mu   sync.Mutex
	ferr error
}

// NewParallel returns an initialized Parallel.
func NewParallel() *Parallel {
	return &Parallel{}
}

// Go starts f. Wait must be called to collect the result.
func (p *Parallel) Go(f func() error) {
	p.wg.Add(1)
	run := func() {
		defer p.wg.Done()
		if err := f(); err != nil {
			p.mu.Lock()
			if p.ferr == nil {
				p.ferr = err
			}
			p.mu.Unlock()
		}
	}
	if Testing {
		run()
	} else {
		go run()
	}
}

// Wait blocks until every started function returns and reports the first error.
func (p *Parallel) Wait() error {
	p.wg.Wait()
	return p.ferr
}

// Package janitor sweeps abandoned scratch directories. A pipeline call that
// dies between creating its scratch directory and the deferred cleanup (e.g.
// a crashed process) leaks the directory; the janitor removes any that are
// older than a maximum age.
package janitor

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/meetbrief/backend/libs/clock"
	"github.com/meetbrief/backend/libs/golog"
)

const scratchPrefix = "transcribe-"

// Janitor periodically removes stale scratch directories under root.
type Janitor struct {
	root     string
	maxAge   time.Duration
	interval time.Duration
	clk      clock.Clock

	started atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New returns a Janitor sweeping root every interval, removing scratch
// directories not modified within maxAge.
func New(root string, maxAge, interval time.Duration, clk clock.Clock) *Janitor {
	return &Janitor{
		root:     root,
		maxAge:   maxAge,
		interval: interval,
		clk:      clk,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called.
func (j *Janitor) Start() {
	if !j.started.CompareAndSwap(false, true) {
		return
	}
	defer close(j.doneCh)
	for {
		if n := j.Sweep(); n > 0 {
			golog.Infof("janitor: removed %d stale scratch directories from %s", n, j.root)
		}
		select {
		case <-j.stopCh:
			return
		case <-j.clk.After(j.interval):
		}
	}
}

// Stop signals the loop to exit and waits up to wait for it.
func (j *Janitor) Stop(wait time.Duration) {
	close(j.stopCh)
	select {
	case <-j.doneCh:
	case <-time.After(wait):
	}
}

// Started reports whether Start has been called. Safe to call from any
// goroutine; the worker collection starts workers on their own goroutines.
func (j *Janitor) Started() bool {
	return j.started.Load()
}

// Sweep removes stale scratch directories once and returns how many were removed.
func (j *Janitor) Sweep() int {
	entries, err := os.ReadDir(j.root)
	if err != nil {
		golog.Errorf("janitor: failed to read %s: %s", j.root, err)
		return 0
	}
	cutoff := j.clk.Now().Add(-j.maxAge)
	var removed int
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), scratchPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(j.root, e.Name())
		if err := os.RemoveAll(dir); err != nil {
			golog.Errorf("janitor: failed to remove %s: %s", dir, err)
			continue
		}
		removed++
	}
	return removed
}

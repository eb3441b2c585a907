// Package shutdown turns interrupt signals into context cancellation.
//
// The first SIGINT or SIGTERM cancels the running command so an in-flight
// API request is abandoned and history is still recorded. A second signal
// calls the force callback, which normally exits the process at once.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// DefaultForceAfter is the signal count that triggers a forced exit.
const DefaultForceAfter = 2

// SignalCounter counts received signals and remembers the first one.
type SignalCounter struct {
	mu         sync.Mutex
	count      int
	first      os.Signal
	forceAfter int
	onForce    func(os.Signal)
}

// NewSignalCounter returns a counter that calls onForce (which may be nil)
// once forceAfter signals have been received.
func NewSignalCounter(forceAfter int, onForce func(os.Signal)) *SignalCounter {
	if forceAfter < 1 {
		forceAfter = DefaultForceAfter
	}
	return &SignalCounter{
		forceAfter: forceAfter,
		onForce:    onForce,
	}
}

// Record registers sig and returns the new count. The force callback runs
// under the lock and should not block.
func (s *SignalCounter) Record(sig os.Signal) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	if s.first == nil {
		s.first = sig
	}
	if s.count >= s.forceAfter && s.onForce != nil {
		s.onForce(sig)
	}
	return s.count
}

// Count returns the number of signals recorded.
func (s *SignalCounter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// First returns the first signal recorded, or nil.
func (s *SignalCounter) First() os.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first
}

// Watch returns a context that is cancelled on the first SIGINT or SIGTERM.
// The returned stop function releases the signal handler and the context.
func Watch(parent context.Context, counter *SignalCounter) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, DefaultForceAfter)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigChan:
				counter.Record(sig)
				cancel()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
			cancel()
		})
	}
	return ctx, stop
}

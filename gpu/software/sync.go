package software

import (
	"fmt"
	"sync"
	"time"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

// A binary semaphore. At most one signal may be pending.
type Semaphore struct {
	ch chan struct{}
}

func newSemaphore() *Semaphore {
	return &Semaphore{ch: make(chan struct{}, 1)}
}

func (s *Semaphore) Release() {}

func (s *Semaphore) signal() error {
	select {
	case s.ch <- struct{}{}:
		return nil
	default:
		return gpu.ErrAlreadySignaled
	}
}

// Consume a pending signal, blocking up to timeout.
func (s *Semaphore) wait(timeout time.Duration) error {
	if timeout < 0 {
		<-s.ch
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.ch:
		return nil
	case <-timer.C:
		return gpu.ErrNotSignaled
	}
}

// Check whether a signal is pending without consuming it.
func (s *Semaphore) pending() bool {
	return len(s.ch) > 0
}

type fenceState uint8

const (
	fenceUnsignaled fenceState = iota
	fencePending
	fenceSignaled
)

// A fence signaled by the queue once submitted work completes.
type Fence struct {
	mu    sync.Mutex
	state fenceState
	done  chan struct{}
	err   error
}

func newFence() *Fence {
	return &Fence{done: make(chan struct{})}
}

func (f *Fence) Release() {}

// Mark the fence as guarding in-flight work.
func (f *Fence) arm() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != fenceUnsignaled {
		return fmt.Errorf("software device: submitted work with a fence that was not reset")
	}
	f.state = fencePending
	return nil
}

func (f *Fence) signal(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == fenceSignaled {
		return
	}
	f.state = fenceSignaled
	f.err = err
	close(f.done)
}

func (f *Fence) Wait(timeout time.Duration) error {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()

	if timeout < 0 {
		<-done
	} else {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			return gpu.ErrTimeout
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return fmt.Errorf("%w: %v", gpu.ErrDeviceLost, f.err)
	}
	return nil
}

func (f *Fence) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == fencePending {
		return fmt.Errorf("software device: cannot reset a fence guarding in-flight work")
	}
	f.state = fenceUnsignaled
	f.err = nil
	f.done = make(chan struct{})
	return nil
}

// Package schedule provides cancellable delayed and repeating tasks.
//
// A Handle is owned by whoever scheduled it; cancelling it guarantees the
// task will not start again. A callback that is already running is not
// interrupted.
package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Handle is a live scheduled task.
type Handle interface {
	// Cancel stops the task and reports whether it was still live.
	Cancel() bool
}

// Scheduler arms one-shot and interval tasks.
type Scheduler interface {
	After(d time.Duration, fn func()) Handle
	Every(d time.Duration, fn func()) Handle
}

// Clock is the wall-clock Scheduler.
type Clock struct{}

// NewClock returns the wall-clock Scheduler.
func NewClock() Clock { return Clock{} }

const (
	stateLive int32 = iota
	stateDone
)

type timerHandle struct {
	timer *time.Timer
	state atomic.Int32
}

// After runs fn once on its own goroutine after d.
func (Clock) After(d time.Duration, fn func()) Handle {
	h := &timerHandle{}
	h.timer = time.AfterFunc(d, func() {
		if h.state.CompareAndSwap(stateLive, stateDone) {
			fn()
		}
	})
	return h
}

func (h *timerHandle) Cancel() bool {
	if !h.state.CompareAndSwap(stateLive, stateDone) {
		return false
	}
	h.timer.Stop()
	return true
}

type tickerHandle struct {
	cancel context.CancelFunc
	once   sync.Once
}

// Every runs fn every d on a dedicated goroutine. Calls never overlap: a
// tick that arrives while fn is still running is dropped.
func (Clock) Every(d time.Duration, fn func()) Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &tickerHandle{cancel: cancel}

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				fn()
			case <-ctx.Done():
				return
			}
		}
	}()
	return h
}

func (h *tickerHandle) Cancel() bool {
	live := false
	h.once.Do(func() {
		live = true
		h.cancel()
	})
	return live
}

var _ Scheduler = Clock{}

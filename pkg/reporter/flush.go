// Copyright 2026 Greener Reporter Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package reporter

import (
	"time"

	"github.com/greener-hub/greener-reporter/pkg/ingress"
	"github.com/greener-hub/greener-reporter/pkg/observability"
)

// flushTrigger names what started a flush, for logging.
type flushTrigger string

const (
	triggerCapacity flushTrigger = "capacity"
	triggerTimer    flushTrigger = "timer"
	triggerShutdown flushTrigger = "shutdown"
)

// flight is one batch on its way to the service.
// A flight does not send until the flight before it has completed, so
// batches go out one at a time in the order they were flushed.
type flight struct {
	id    uint64
	batch []ingress.Testcase
	prev  *flight
	done  chan struct{}
}

// flushLocked disarms the timer and dispatches the pending testcases.
// It is a no-op on an empty buffer. Callers hold r.mu.
func (r *Reporter) flushLocked(trigger flushTrigger) *flight {
	r.stopTimerLocked()

	batch := r.buffer.swap()
	if batch == nil {
		return nil
	}

	r.flightSeq++
	f := &flight{
		id:    r.flightSeq,
		batch: batch,
		prev:  r.inFlight,
		done:  make(chan struct{}),
	}
	r.inFlight = f

	r.log.Debug("testcase batch dispatched",
		observability.String("trigger", string(trigger)),
		observability.Int("batch", int(f.id)),
		observability.Int("testcases", len(batch)))

	go r.send(f)
	return f
}

// send delivers f once its predecessor is done. Completion handling
// happens before f.done is closed, so waiters observe its effects.
func (r *Reporter) send(f *flight) {
	if f.prev != nil {
		<-f.prev.done
		f.prev = nil
	}

	start := time.Now()
	err := r.client.ReportTestcases(r.ctx, f.batch)
	if err != nil {
		r.stats.batchesFailed.Add(1)
		r.stats.testcasesFailed.Add(int64(len(f.batch)))
		r.errs.Push(err)
		r.log.Warn("testcase batch delivery failed",
			observability.Int("batch", int(f.id)),
			observability.Int("testcases", len(f.batch)),
			observability.Err(err))
	} else {
		r.stats.batchesSent.Add(1)
		r.stats.testcasesSent.Add(int64(len(f.batch)))
		r.log.Debug("testcase batch delivered",
			observability.Int("batch", int(f.id)),
			observability.Duration("elapsed", time.Since(start)))
	}

	r.mu.Lock()
	if r.inFlight == f {
		r.inFlight = nil
	}
	r.mu.Unlock()

	close(f.done)
}

// armTimerLocked starts the flush timer unless one is already armed.
// Callers hold r.mu.
func (r *Reporter) armTimerLocked() {
	if r.timer != nil {
		return
	}
	r.timerGen++
	gen := r.timerGen
	r.timer = time.AfterFunc(r.opts.flushInterval, func() {
		r.onTimer(gen)
	})
}

// onTimer flushes unless the timer it belongs to was disarmed meanwhile.
func (r *Reporter) onTimer(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer == nil || gen != r.timerGen {
		return
	}
	r.timer = nil
	r.flushLocked(triggerTimer)
}

// stopTimerLocked disarms the flush timer. Callers hold r.mu.
func (r *Reporter) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Copyright 2026 Greener Reporter Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package reporter streams test sessions and testcase results to a greener
// ingestion service.
//
// Sessions are created synchronously. Testcases are validated, buffered and
// sent in batches in the background: a batch goes out when the buffer
// reaches its capacity or when the flush interval elapses after the first
// buffered testcase. At most one batch request is in flight at a time.
// Delivery failures never reach the caller of CreateTestcase; they are
// queued and must be polled with PopError.
//
// Basic usage:
//
//	r, err := reporter.New("https://greener.example.com", apiKey)
//	session, err := r.CreateSession(ctx, reporter.SessionInput{})
//	err = r.CreateTestcase(reporter.TestcaseInput{
//		SessionID: session.ID,
//		Name:      "TestLogin",
//		Status:    reporter.StatusPass,
//	})
//	err = r.Shutdown(ctx)
//	for err := r.PopError(); err != nil; err = r.PopError() {
//		log.Println(err)
//	}
package reporter

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/greener-hub/greener-reporter/pkg/config"
	"github.com/greener-hub/greener-reporter/pkg/errors"
	"github.com/greener-hub/greener-reporter/pkg/ingress"
	"github.com/greener-hub/greener-reporter/pkg/observability"
)

// State represents the reporter lifecycle state.
type State int

const (
	StateActive State = iota
	StateShuttingDown
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateShuttingDown:
		return "shutting_down"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// errShutdownMessage is returned by every operation after Shutdown.
const errShutdownMessage = "reporter has been shut down"

// Reporter is the batching reporter. It is safe for concurrent use.
type Reporter struct {
	client *ingress.Client
	log    observability.Logger
	opts   options
	ctx    context.Context

	mu           sync.Mutex
	state        State
	buffer       batchBuffer
	timer        *time.Timer
	timerGen     uint64
	inFlight     *flight
	flightSeq    uint64
	shutdownDone chan struct{}

	errs  ErrorSink
	stats counters
}

type options struct {
	batchSize     int
	flushInterval time.Duration
	logger        observability.Logger
	httpClient    *http.Client
}

// Option configures a Reporter.
type Option func(*options)

// WithBatchSize sets how many testcases trigger an immediate flush.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithFlushInterval sets how long a partial batch waits before it is flushed.
func WithFlushInterval(d time.Duration) Option {
	return func(o *options) {
		o.flushInterval = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l observability.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// New creates a Reporter for the ingestion service at endpoint.
func New(endpoint, apiKey string, opts ...Option) (*Reporter, error) {
	o := options{
		batchSize:     config.DefaultBatchSize,
		flushInterval: config.DefaultFlushInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := config.ValidateEndpoint(endpoint); err != nil {
		return nil, errors.ConfigError("invalid endpoint", err)
	}
	if apiKey == "" {
		return nil, errors.ConfigError("api key is required", nil)
	}
	if o.batchSize < 1 {
		return nil, errors.ConfigError("batch size must be at least 1", nil)
	}
	if o.flushInterval <= 0 {
		return nil, errors.ConfigError("flush interval must be positive", nil)
	}
	if o.logger == nil {
		o.logger = observability.NewNop()
	}

	var clientOpts []ingress.ClientOption
	if o.httpClient != nil {
		clientOpts = append(clientOpts, ingress.WithHTTPClient(o.httpClient))
	}
	client := ingress.NewClient(endpoint, apiKey, clientOpts...)

	return &Reporter{
		client: client,
		log:    o.logger.With(observability.String("endpoint", client.Endpoint())),
		opts:   o,
		ctx:    context.Background(),
		state:  StateActive,
		buffer: newBatchBuffer(o.batchSize),
	}, nil
}

// NewFromConfig creates a Reporter from a validated configuration.
func NewFromConfig(cfg *config.Config, log observability.Logger, opts ...Option) (*Reporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError("invalid configuration", err)
	}
	base := []Option{
		WithBatchSize(cfg.Batch.Size),
		WithFlushInterval(cfg.Batch.FlushInterval),
		WithLogger(log),
	}
	return New(cfg.Ingress.Endpoint, cfg.Ingress.ResolveAPIKey(), append(base, opts...)...)
}

// State returns the current lifecycle state.
func (r *Reporter) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Reporter) checkActive() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateActive {
		return errors.LifecycleError(errShutdownMessage)
	}
	return nil
}

// CreateSession creates a session and waits for the service's reply.
// A failed exchange is returned as *errors.IngressError.
func (r *Reporter) CreateSession(ctx context.Context, in SessionInput) (*ingress.Session, error) {
	if err := r.checkActive(); err != nil {
		return nil, err
	}

	req, err := ValidateSession(in)
	if err != nil {
		return nil, err
	}

	session, err := r.client.CreateSession(ctx, req)
	if err != nil {
		r.log.Warn("session creation failed", observability.Err(err))
		return nil, err
	}

	r.log.Info("session created", observability.String("session_id", session.ID))
	return session, nil
}

// CreateTestcase validates in and buffers it for delivery. It never waits
// for the network; only validation and lifecycle errors are returned.
func (r *Reporter) CreateTestcase(in TestcaseInput) error {
	if err := r.checkActive(); err != nil {
		return err
	}

	tc, err := ValidateTestcase(in)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateActive {
		return errors.LifecycleError(errShutdownMessage)
	}

	r.stats.submitted.Add(1)
	if r.buffer.add(tc) {
		r.flushLocked(triggerCapacity)
	} else {
		r.armTimerLocked()
	}
	return nil
}

// PopError removes and returns the oldest background delivery failure,
// or nil if there is none.
func (r *Reporter) PopError() error {
	return r.errs.Pop()
}

// Shutdown stops accepting input, waits for the batch in flight, flushes
// what remains and waits for that too. It is idempotent; concurrent calls
// wait for the same drain.
//
// If ctx is done first, Shutdown returns ctx.Err() and the drain continues
// in the background; the reporter still ends up shut down.
func (r *Reporter) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	switch r.state {
	case StateShutdown:
		r.mu.Unlock()
		return nil
	case StateShuttingDown:
		done := r.shutdownDone
		r.mu.Unlock()
		return waitDone(ctx, done)
	}

	r.state = StateShuttingDown
	r.shutdownDone = make(chan struct{})
	r.stopTimerLocked()
	prev := r.inFlight
	done := r.shutdownDone
	r.mu.Unlock()

	r.log.Debug("reporter shutting down")
	go r.drain(prev)

	return waitDone(ctx, done)
}

// drain completes the shutdown sequence started by Shutdown.
func (r *Reporter) drain(prev *flight) {
	if prev != nil {
		<-prev.done
	}

	r.mu.Lock()
	final := r.flushLocked(triggerShutdown)
	r.mu.Unlock()

	if final != nil {
		<-final.done
	}

	r.mu.Lock()
	r.state = StateShutdown
	r.mu.Unlock()

	r.log.Info("reporter shut down",
		observability.Int("testcases_sent", int(r.stats.testcasesSent.Load())),
		observability.Int("pending_errors", r.errs.Len()))
	close(r.shutdownDone)
}

func waitDone(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// counters backs Stats.
type counters struct {
	submitted       atomic.Int64
	batchesSent     atomic.Int64
	batchesFailed   atomic.Int64
	testcasesSent   atomic.Int64
	testcasesFailed atomic.Int64
}

// Stats is a snapshot of reporter activity.
type Stats struct {
	Submitted       int64
	Pending         int
	BatchesSent     int64
	BatchesFailed   int64
	TestcasesSent   int64
	TestcasesFailed int64
	QueuedErrors    int
}

// Stats returns a snapshot of reporter activity.
func (r *Reporter) Stats() Stats {
	r.mu.Lock()
	pending := r.buffer.len()
	r.mu.Unlock()

	return Stats{
		Submitted:       r.stats.submitted.Load(),
		Pending:         pending,
		BatchesSent:     r.stats.batchesSent.Load(),
		BatchesFailed:   r.stats.batchesFailed.Load(),
		TestcasesSent:   r.stats.testcasesSent.Load(),
		TestcasesFailed: r.stats.testcasesFailed.Load(),
		QueuedErrors:    r.errs.Len(),
	}
}

// Copyright 2026 Greener Reporter Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package servermock provides a mock greener ingestion service for
// fixture-driven contract tests. It serves canned responses, records every
// call it receives and compares them with a fixture's expected calls.
package servermock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"sync"

	"github.com/greener-hub/greener-reporter/pkg/ingress"
	"github.com/greener-hub/greener-reporter/pkg/observability"
)

// Servermock is a mock ingestion service listening on a local ephemeral port.
type Servermock struct {
	mu        sync.Mutex
	responses *Responses
	recorded  []Call
	listener  net.Listener
	server    *http.Server
	serveErr  chan error
	log       observability.Logger
}

// Option configures a Servermock.
type Option func(*Servermock)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l observability.Logger) Option {
	return func(s *Servermock) {
		s.log = l
	}
}

// New creates an idle Servermock.
func New(opts ...Option) *Servermock {
	s := &Servermock{log: observability.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve starts answering with responses (responses.json text).
func (s *Servermock) Serve(responses string) error {
	parsed, err := ParseResponses(responses)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("servermock is already serving on port %d", s.portLocked())
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(ingress.SessionsPath, s.handle(FuncCreateSession))
	mux.HandleFunc(ingress.TestcasesPath, s.handle(FuncReport))

	s.responses = parsed
	s.recorded = nil
	s.listener = ln
	s.server = &http.Server{Handler: mux}
	s.serveErr = make(chan error, 1)

	go func(srv *http.Server, errCh chan<- error) {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}(s.server, s.serveErr)

	s.log.Info("servermock listening", observability.Int("port", s.portLocked()))
	return nil
}

// Port returns the listening port, or 0 when not serving.
func (s *Servermock) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portLocked()
}

func (s *Servermock) portLocked() int {
	if s.listener == nil {
		return 0
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}

// URL returns the base URL to give a reporter as its endpoint.
func (s *Servermock) URL() string {
	return "http://127.0.0.1:" + strconv.Itoa(s.Port())
}

// Recorded returns a copy of the calls received so far.
func (s *Servermock) Recorded() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.recorded))
	copy(out, s.recorded)
	return out
}

// Shutdown stops the listener. It is a no-op when not serving.
func (s *Servermock) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, errCh := s.server, s.serveErr
	s.server, s.listener, s.serveErr = nil, nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Servermock) handle(fn string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, ingress.ErrorResponse{Detail: "method not allowed"})
			return
		}
		if r.Header.Get(ingress.APIKeyHeader) == "" {
			writeJSON(w, http.StatusUnauthorized, ingress.ErrorResponse{Detail: "missing api key"})
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil || !json.Valid(body) {
			writeJSON(w, http.StatusBadRequest, ingress.ErrorResponse{Detail: "invalid json body"})
			return
		}

		s.mu.Lock()
		s.recorded = append(s.recorded, Call{Func: fn, Payload: json.RawMessage(body)})
		resp := s.responses.CreateSessionResponse
		if fn == FuncReport {
			resp = s.responses.ReportResponse
		}
		s.mu.Unlock()

		s.log.Debug("servermock call", observability.String("func", fn), observability.String("status", resp.Status))

		if resp.Status == StatusError {
			p, _ := resp.ErrorPayload()
			code := p.Code
			writeJSON(w, p.IngressCode, ingress.ErrorResponse{Detail: p.Message, Code: &code})
			return
		}

		payload := resp.Payload
		if len(payload) == 0 {
			payload = json.RawMessage(`{}`)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Assert compares the recorded calls with calls (calls.json text).
// Session payloads are compared in order. Testcases are compared as one
// sequence across all report calls, since how a reporter splits them into
// batches is not part of the contract. Null and absent fields are equal.
func (s *Servermock) Assert(calls string) error {
	expected, err := ParseCalls(calls)
	if err != nil {
		return err
	}

	wantSessions, wantTestcases, err := split(expected.Calls)
	if err != nil {
		return fmt.Errorf("expected calls: %w", err)
	}
	gotSessions, gotTestcases, err := split(s.Recorded())
	if err != nil {
		return fmt.Errorf("recorded calls: %w", err)
	}

	if len(gotSessions) != len(wantSessions) {
		return fmt.Errorf("expected %d createSession calls, got %d", len(wantSessions), len(gotSessions))
	}
	for i := range wantSessions {
		if !reflect.DeepEqual(wantSessions[i], gotSessions[i]) {
			return fmt.Errorf("createSession call %d: expected %s, got %s", i, render(wantSessions[i]), render(gotSessions[i]))
		}
	}

	if len(gotTestcases) != len(wantTestcases) {
		return fmt.Errorf("expected %d reported testcases, got %d", len(wantTestcases), len(gotTestcases))
	}
	for i := range wantTestcases {
		if !reflect.DeepEqual(wantTestcases[i], gotTestcases[i]) {
			return fmt.Errorf("testcase %d: expected %s, got %s", i, render(wantTestcases[i]), render(gotTestcases[i]))
		}
	}
	return nil
}

// split separates session payloads from the flattened testcase list.
func split(calls []Call) (sessions []any, testcases []any, err error) {
	for i, c := range calls {
		v, err := decode(c.Payload)
		if err != nil {
			return nil, nil, fmt.Errorf("call %d: %w", i, err)
		}
		switch c.Func {
		case FuncCreateSession:
			sessions = append(sessions, v)
		case FuncReport:
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, nil, fmt.Errorf("call %d: report payload is not an object", i)
			}
			list, _ := obj["testcases"].([]any)
			testcases = append(testcases, list...)
		default:
			return nil, nil, fmt.Errorf("call %d: unknown func %q", i, c.Func)
		}
	}
	return sessions, testcases, nil
}

// decode parses JSON with numbers kept exact and null fields removed.
func decode(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return dropNulls(v), nil
}

func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if val == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = dropNulls(t[i])
		}
		return t
	default:
		return v
	}
}

func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

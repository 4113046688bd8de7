package reporter

import (
	"bytes"
	"encoding/json"

	"github.com/greener-hub/greener-reporter/pkg/errors"
	"github.com/greener-hub/greener-reporter/pkg/ingress"
)

// Status is the outcome of a testcase.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusError Status = "error"
	StatusSkip  Status = "skip"
)

// Valid reports whether s is one of the accepted statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusFail, StatusError, StatusSkip:
		return true
	default:
		return false
	}
}

// SessionInput describes a session to create. Nil fields are absent.
type SessionInput struct {
	ID          *string
	Description *string
	Baggage     *string // JSON text
	Labels      *string
}

// TestcaseInput describes one testcase result. Nil fields are absent.
type TestcaseInput struct {
	SessionID string
	Name      string
	Classname *string
	File      *string
	Testsuite *string
	Status    Status
	Output    *string
	Baggage   *string // JSON text
}

// String returns a pointer to s, for optional input fields.
func String(s string) *string {
	return &s
}

// ValidateSession checks in and builds the wire request.
func ValidateSession(in SessionInput) (*ingress.SessionRequest, error) {
	baggage, err := parseBaggage(in.Baggage)
	if err != nil {
		return nil, err
	}
	return &ingress.SessionRequest{
		ID:          in.ID,
		Description: in.Description,
		Baggage:     baggage,
		Labels:      in.Labels,
	}, nil
}

// ValidateTestcase checks in and builds the wire record.
func ValidateTestcase(in TestcaseInput) (ingress.Testcase, error) {
	if in.SessionID == "" {
		return ingress.Testcase{}, errors.ValidationError("session_id", "session_id is required", nil)
	}
	if in.Name == "" {
		return ingress.Testcase{}, errors.ValidationError("testcase_name", "testcase_name is required", nil)
	}
	if !in.Status.Valid() {
		return ingress.Testcase{}, errors.ValidationError("status", "status must be one of pass|fail|error|skip", nil).
			WithContext("value", string(in.Status))
	}

	baggage, err := parseBaggage(in.Baggage)
	if err != nil {
		return ingress.Testcase{}, err
	}

	return ingress.Testcase{
		SessionID:         in.SessionID,
		TestcaseName:      in.Name,
		TestcaseClassname: in.Classname,
		TestcaseFile:      in.File,
		Testsuite:         in.Testsuite,
		Status:            string(in.Status),
		Output:            in.Output,
		Baggage:           baggage,
	}, nil
}

// parseBaggage checks that raw is JSON and returns it compacted.
func parseBaggage(raw *string) (json.RawMessage, error) {
	if raw == nil {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal([]byte(*raw), &v); err != nil {
		return nil, errors.ValidationError("baggage", "invalid baggage JSON", err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(*raw)); err != nil {
		return nil, errors.ValidationError("baggage", "invalid baggage JSON", err)
	}
	return json.RawMessage(buf.Bytes()), nil
}

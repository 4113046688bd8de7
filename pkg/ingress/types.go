// Package ingress implements the JSON-over-HTTP protocol of the greener
// ingestion service.
package ingress

import "encoding/json"

const (
	// SessionsPath is the session creation endpoint.
	SessionsPath = "/api/v1/ingress/sessions"
	// TestcasesPath is the testcase batch endpoint.
	TestcasesPath = "/api/v1/ingress/testcases"

	// APIKeyHeader carries the reporter's API key on every request.
	APIKeyHeader = "X-API-Key"
)

// SessionRequest is the body of a session creation request.
// Nil fields are omitted from the wire.
type SessionRequest struct {
	ID          *string         `json:"id,omitempty"`
	Description *string         `json:"description,omitempty"`
	Baggage     json.RawMessage `json:"baggage,omitempty"`
	Labels      *string         `json:"labels,omitempty"`
}

// Session is the service's reply to a session creation request.
type Session struct {
	ID string `json:"id"`
}

// Testcase is one testcase record as sent to the service.
type Testcase struct {
	SessionID         string          `json:"sessionId"`
	TestcaseName      string          `json:"testcaseName"`
	TestcaseClassname *string         `json:"testcaseClassname,omitempty"`
	TestcaseFile      *string         `json:"testcaseFile,omitempty"`
	Testsuite         *string         `json:"testsuite,omitempty"`
	Status            string          `json:"status"`
	Output            *string         `json:"output,omitempty"`
	Baggage           json.RawMessage `json:"baggage,omitempty"`
}

// TestcasesRequest is the body of a testcase batch request.
type TestcasesRequest struct {
	Testcases []Testcase `json:"testcases"`
}

// ErrorResponse is the body the service sends with a non-success status.
// Either Detail or Message carries the text.
type ErrorResponse struct {
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
	Code    *int   `json:"code,omitempty"`
}

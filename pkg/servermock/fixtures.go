package servermock

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

//go:embed fixtures
var fixturesFS embed.FS

const (
	callsFile     = "calls.json"
	responsesFile = "responses.json"
)

// Call is one expected or recorded exchange.
// Func is "createSession" or "report".
type Call struct {
	Func    string          `json:"func"`
	Payload json.RawMessage `json:"payload"`
}

// Calls is the content of a fixture's calls.json.
type Calls struct {
	Calls []Call `json:"calls"`
}

// Response is a canned reply. Status is "success" or "error".
type Response struct {
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload"`
}

// Responses is the content of a fixture's responses.json.
type Responses struct {
	CreateSessionResponse Response `json:"createSessionResponse"`
	ReportResponse        Response `json:"reportResponse"`
}

// ErrorPayload is the payload of an "error" Response.
type ErrorPayload struct {
	Code        int    `json:"code"`
	IngressCode int    `json:"ingressCode"`
	Message     string `json:"message"`
}

const (
	FuncCreateSession = "createSession"
	FuncReport        = "report"

	StatusSuccess = "success"
	StatusError   = "error"
)

// FixtureNames lists the embedded fixtures in name order.
func FixtureNames() []string {
	entries, err := fs.ReadDir(fixturesFS, "fixtures")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// FixtureCalls returns the expected calls of a fixture as JSON text.
func FixtureCalls(name string) (string, error) {
	return readFixture(name, callsFile)
}

// FixtureResponses returns the canned responses of a fixture as JSON text.
func FixtureResponses(name string) (string, error) {
	return readFixture(name, responsesFile)
}

func readFixture(name, file string) (string, error) {
	data, err := fixturesFS.ReadFile(path.Join("fixtures", name, file))
	if err != nil {
		return "", fmt.Errorf("unknown fixture %q: %w", name, err)
	}
	return string(data), nil
}

// ParseCalls decodes calls.json text.
func ParseCalls(text string) (*Calls, error) {
	var c Calls
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return nil, fmt.Errorf("failed to parse calls: %w", err)
	}
	for i, call := range c.Calls {
		if call.Func != FuncCreateSession && call.Func != FuncReport {
			return nil, fmt.Errorf("calls[%d]: unknown func %q", i, call.Func)
		}
	}
	return &c, nil
}

// ParseResponses decodes responses.json text.
func ParseResponses(text string) (*Responses, error) {
	var r Responses
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, fmt.Errorf("failed to parse responses: %w", err)
	}
	for name, resp := range map[string]Response{
		"createSessionResponse": r.CreateSessionResponse,
		"reportResponse":        r.ReportResponse,
	} {
		if resp.Status != StatusSuccess && resp.Status != StatusError {
			return nil, fmt.Errorf("%s: unknown status %q", name, resp.Status)
		}
		if resp.Status == StatusError {
			if _, err := resp.ErrorPayload(); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return &r, nil
}

// ErrorPayload decodes the payload of an error response.
func (r Response) ErrorPayload() (*ErrorPayload, error) {
	var p ErrorPayload
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return nil, fmt.Errorf("invalid error payload: %w", err)
	}
	if p.IngressCode == 0 {
		return nil, fmt.Errorf("error payload has no ingressCode")
	}
	return &p, nil
}

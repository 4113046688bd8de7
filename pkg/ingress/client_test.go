package ingress

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/greener-hub/greener-reporter/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/", "key")

	if client.Endpoint() != "http://localhost:8080" {
		t.Errorf("Endpoint() = %s, want http://localhost:8080", client.Endpoint())
	}
	if client.apiKey != "key" {
		t.Errorf("apiKey = %s, want key", client.apiKey)
	}
	if client.httpClient != http.DefaultClient {
		t.Error("httpClient should default to http.DefaultClient")
	}
}

func TestClient_CreateSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.URL.Path != SessionsPath {
			t.Errorf("Path = %s, want %s", r.URL.Path, SessionsPath)
		}
		if key := r.Header.Get(APIKeyHeader); key != "some-api-key" {
			t.Errorf("%s = %s, want some-api-key", APIKeyHeader, key)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", ct)
		}

		body, _ := io.ReadAll(r.Body)
		want := `{"description":"nightly","baggage":{"k":1}}`
		if string(body) != want {
			t.Errorf("body = %s, want %s", body, want)
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "s1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "some-api-key")
	session, err := client.CreateSession(context.Background(), &SessionRequest{
		Description: strPtr("nightly"),
		Baggage:     json.RawMessage(`{"k":1}`),
	})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if session.ID != "s1" {
		t.Errorf("session.ID = %s, want s1", session.ID)
	}
}

func TestClient_ReportTestcases(t *testing.T) {
	var got TestcasesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != TestcasesPath {
			t.Errorf("Path = %s, want %s", r.URL.Path, TestcasesPath)
		}
		raw, _ := io.ReadAll(r.Body)
		if strings.Contains(string(raw), "null") {
			t.Errorf("absent fields must be omitted, got %s", raw)
		}
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Errorf("Unmarshal() error = %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")
	err := client.ReportTestcases(context.Background(), []Testcase{
		{SessionID: "s1", TestcaseName: "a", Status: "pass"},
		{SessionID: "s1", TestcaseName: "b", Status: "fail", Testsuite: strPtr("suite")},
	})
	if err != nil {
		t.Fatalf("ReportTestcases() error = %v", err)
	}

	if len(got.Testcases) != 2 {
		t.Fatalf("got %d testcases, want 2", len(got.Testcases))
	}
	if got.Testcases[0].TestcaseName != "a" || got.Testcases[1].TestcaseName != "b" {
		t.Errorf("testcase order = %s,%s, want a,b", got.Testcases[0].TestcaseName, got.Testcases[1].TestcaseName)
	}
	if got.Testcases[1].Testsuite == nil || *got.Testcases[1].Testsuite != "suite" {
		t.Errorf("testsuite = %v, want suite", got.Testcases[1].Testsuite)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantText string
	}{
		{
			name:     "detail and code",
			status:   http.StatusInternalServerError,
			body:     `{"detail":"db down","code":7}`,
			wantText: "GreenerReporterError 7/500: db down",
		},
		{
			name:     "message without code",
			status:   http.StatusUnauthorized,
			body:     `{"message":"bad api key"}`,
			wantText: "GreenerReporterError 1/401: bad api key",
		},
		{
			name:     "detail wins over message",
			status:   http.StatusBadRequest,
			body:     `{"detail":"invalid status","message":"ignored","code":3}`,
			wantText: "GreenerReporterError 3/400: invalid status",
		},
		{
			name:     "non-json body",
			status:   http.StatusBadGateway,
			body:     "upstream unavailable",
			wantText: "GreenerReporterError 1/502: upstream unavailable",
		},
		{
			name:     "non-numeric code",
			status:   http.StatusConflict,
			body:     `{"detail":"dup","code":"x"}`,
			wantText: "GreenerReporterError 1/409: dup",
		},
		{
			name:     "malformed success body",
			status:   http.StatusOK,
			body:     "not json",
			wantText: "GreenerReporterError 1/200: failed to parse response: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "key")
			_, err := client.CreateSession(context.Background(), &SessionRequest{})
			if err == nil {
				t.Fatal("CreateSession() error = nil, want error")
			}
			if !strings.HasPrefix(err.Error(), tt.wantText) {
				t.Errorf("error = %q, want prefix %q", err.Error(), tt.wantText)
			}
			if _, ok := errors.AsIngress(err); !ok {
				t.Errorf("error %T is not an IngressError", err)
			}
		})
	}
}

func TestClient_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "key")
	err := client.ReportTestcases(context.Background(), []Testcase{{SessionID: "s", TestcaseName: "t", Status: "pass"}})

	ie, ok := errors.AsIngress(err)
	if !ok {
		t.Fatalf("error = %v, want IngressError", err)
	}
	if ie.Code != 1 || ie.StatusCode != 0 {
		t.Errorf("error code = %d/%d, want 1/0", ie.Code, ie.StatusCode)
	}
	if !ie.IsConnection() {
		t.Error("IsConnection() = false, want true")
	}
	if !strings.HasPrefix(err.Error(), "GreenerReporterError 1/0: ") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestClient_SingleRequestPerCall(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")
	_ = client.ReportTestcases(context.Background(), nil)

	if calls != 1 {
		t.Errorf("server saw %d requests, want 1", calls)
	}
}

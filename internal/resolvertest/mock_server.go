// Package resolvertest provides an in-process stand-in for the identifier and
// structure services, plus a clock that never sleeps.
package resolvertest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer answers lookups keyed by the value of one query parameter. Each
// value can be scripted with a sequence of status codes; the last status of a
// sequence repeats once the sequence is used up.
type MockServer struct {
	server *httptest.Server
	param  string

	mu            sync.Mutex
	scripts       map[string][]int
	broken        map[string]bool
	defaultStatus int
	delay         time.Duration
	requests      []string
	counts        map[string]int
}

// NewMockServer starts a server that reads the looked-up value from param.
// Unscripted values get 200.
func NewMockServer(param string) *MockServer {
	ms := &MockServer{
		param:         param,
		scripts:       make(map[string][]int),
		broken:        make(map[string]bool),
		counts:        make(map[string]int),
		defaultStatus: http.StatusOK,
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the base URL of the server.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts the server down.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetStatuses scripts the responses for value.
func (ms *MockServer) SetStatuses(value string, statuses ...int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.scripts[value] = append([]int(nil), statuses...)
}

// SetDefaultStatus sets the status for unscripted values.
func (ms *MockServer) SetDefaultStatus(code int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.defaultStatus = code
}

// SetDelay delays every response.
func (ms *MockServer) SetDelay(d time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.delay = d
}

// Break makes lookups of value drop the connection without a response.
func (ms *MockServer) Break(value string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.broken[value] = true
}

// RequestCount returns the number of requests received.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requests)
}

// CountFor returns the number of requests received for value.
func (ms *MockServer) CountFor(value string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.counts[value]
}

// Requests returns the looked-up values in arrival order.
func (ms *MockServer) Requests() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.requests...)
}

// Reset clears the request log. Scripts are kept.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = nil
	ms.counts = make(map[string]int)
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get(ms.param)

	ms.mu.Lock()
	n := ms.counts[value]
	ms.counts[value] = n + 1
	ms.requests = append(ms.requests, value)
	status := ms.defaultStatus
	if script, ok := ms.scripts[value]; ok && len(script) > 0 {
		if n < len(script) {
			status = script[n]
		} else {
			status = script[len(script)-1]
		}
	}
	broken := ms.broken[value]
	delay := ms.delay
	ms.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if broken {
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "hijacking not supported", http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
		return
	}

	// Fresh connections per request keep transport-level retries out of
	// request counts.
	w.Header().Set("Connection", "close")
	w.WriteHeader(status)
	_, _ = w.Write([]byte("{}"))
}

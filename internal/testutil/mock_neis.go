// Package testutil provides testing utilities for the NEIS client.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Dataset is the backing data of one mock service.
type Dataset struct {
	Rows []map[string]any

	// DeclaredTotal overrides list_total_count. Zero reports len(Rows).
	DeclaredTotal int

	// PageCodes answers the given page indices with a RESULT envelope.
	PageCodes map[int]string

	// PageStatus answers the given page indices with a bare HTTP status.
	PageStatus map[int]int

	// Delay is applied before every response.
	Delay time.Duration
}

// MockNEIS is a configurable mock of the open-data hub for testing.
type MockNEIS struct {
	server   *httptest.Server
	mu       sync.RWMutex
	datasets map[string]*Dataset
	handlers map[string]http.HandlerFunc

	requiredKey  string
	requestCount int
	requests     []url.Values
}

// NewMockNEIS creates a new mock hub server.
func NewMockNEIS() *MockNEIS {
	mock := &MockNEIS{
		datasets: make(map[string]*Dataset),
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		service := strings.Trim(strings.TrimPrefix(r.URL.Path, "/hub"), "/")

		mock.mu.Lock()
		mock.requestCount++
		mock.requests = append(mock.requests, r.URL.Query())
		handler, hasHandler := mock.handlers[service]
		mock.mu.Unlock()

		if hasHandler {
			handler(w, r)
			return
		}
		mock.serveDataset(w, r, service)
	}))

	return mock
}

// URL returns the base URL to configure the client with.
func (m *MockNEIS) URL() string {
	return m.server.URL + "/hub/"
}

// Close shuts down the mock server.
func (m *MockNEIS) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockNEIS) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.requests = nil
}

// SetDataset installs the rows served for service.
func (m *MockNEIS) SetDataset(service string, ds *Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[service] = ds
}

// SetRequiredKey makes the server reject other keys with ERROR-290.
func (m *MockNEIS) SetRequiredKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requiredKey = key
}

// SetHandler overrides the behavior of a single service.
func (m *MockNEIS) SetHandler(service string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[service] = handler
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockNEIS) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// Requests returns the query strings received, in arrival order.
func (m *MockNEIS) Requests() []url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]url.Values, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockNEIS) serveDataset(w http.ResponseWriter, r *http.Request, service string) {
	query := r.URL.Query()

	m.mu.RLock()
	requiredKey := m.requiredKey
	ds, ok := m.datasets[service]
	m.mu.RUnlock()

	if requiredKey != "" && query.Get("KEY") != requiredKey {
		writeJSON(w, ResultBody("ERROR-290", "인증키가 유효하지 않습니다."))
		return
	}

	if !ok {
		writeJSON(w, ResultBody("ERROR-310", "해당하는 서비스를 찾을 수 없습니다."))
		return
	}

	if ds.Delay > 0 {
		select {
		case <-time.After(ds.Delay):
		case <-r.Context().Done():
			return
		}
	}

	index, _ := strconv.Atoi(query.Get("pIndex"))
	size, _ := strconv.Atoi(query.Get("pSize"))
	if index < 1 {
		index = 1
	}
	if size < 1 {
		size = 100
	}

	if status, ok := ds.PageStatus[index]; ok {
		w.WriteHeader(status)
		return
	}
	if code, ok := ds.PageCodes[index]; ok {
		writeJSON(w, ResultBody(code, "injected"))
		return
	}

	start := (index - 1) * size
	if start >= len(ds.Rows) {
		writeJSON(w, ResultBody("INFO-200", "해당하는 데이터가 없습니다."))
		return
	}
	end := start + size
	if end > len(ds.Rows) {
		end = len(ds.Rows)
	}

	total := ds.DeclaredTotal
	if total == 0 {
		total = len(ds.Rows)
	}
	writeJSON(w, SuccessBody(service, total, ds.Rows[start:end]))
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// SuccessBody renders a success envelope.
func SuccessBody(service string, total int, rows []map[string]any) string {
	if rows == nil {
		rows = []map[string]any{}
	}
	envelope := map[string]any{
		service: []any{
			map[string]any{"head": []any{
				map[string]any{"list_total_count": total},
				map[string]any{"RESULT": map[string]string{"CODE": "INFO-000", "MESSAGE": "정상 처리되었습니다."}},
			}},
			map[string]any{"row": rows},
		},
	}
	data, _ := json.Marshal(envelope)
	return string(data)
}

// ResultBody renders an error envelope.
func ResultBody(code, message string) string {
	data, _ := json.Marshal(map[string]any{
		"RESULT": map[string]string{"CODE": code, "MESSAGE": message},
	})
	return string(data)
}

// NumberedRows returns n rows carrying an increasing ID field, starting at 1.
func NumberedRows(n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{"ID": strconv.Itoa(i + 1)}
	}
	return rows
}

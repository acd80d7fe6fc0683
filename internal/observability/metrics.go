package observability

import (
	"sync"
	"time"
)

// routeKey identifies a route for counter purposes.
type routeKey struct {
	Path   string
	Method string
}

// routeStats accumulates per-route request counters. Status codes are
// bucketed by class so a handful of counters covers the whole surface.
type routeStats struct {
	Count       int64
	StatusClass map[int]int64
	TotalTime   time.Duration
}

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu       sync.Mutex
	requests map[routeKey]*routeStats
	errors   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[routeKey]*routeStats),
		errors:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.requests[routeKey{Path: path, Method: method}]
	if !ok {
		stats = &routeStats{StatusClass: make(map[int]int64)}
		m.requests[routeKey{Path: path, Method: method}] = stats
	}
	stats.Count++
	stats.StatusClass[status/100]++
	stats.TotalTime += duration
}

// RecordError counts failed requests by domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[code]++
}

// ErrorCount reports how many requests failed with the given code.
func (m *Metrics) ErrorCount(code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[code]
}

// RequestCount reports totals for a route, optionally narrowed to a status
// class (2 for 2xx and so on; 0 means all).
func (m *Metrics) RequestCount(path, method string, statusClass int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.requests[routeKey{Path: path, Method: method}]
	if !ok {
		return 0
	}
	if statusClass == 0 {
		return stats.Count
	}
	return stats.StatusClass[statusClass]
}

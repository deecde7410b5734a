package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type statusClass int

const (
	class2xx statusClass = iota
	class4xx
	class429
	class5xx
	classOther
)

func classify(code int) statusClass {
	switch {
	case code == http.StatusTooManyRequests:
		return class429
	case code >= 200 && code < 300:
		return class2xx
	case code >= 400 && code < 500:
		return class4xx
	case code >= 500:
		return class5xx
	}
	return classOther
}

// Metrics counts transport activity for the molecule API. Safe for
// concurrent use.
type Metrics struct {
	requests atomic.Int64
	reads    atomic.Int64
	writes   atomic.Int64
	retries  atomic.Int64
	backoff  atomic.Int64 // nanoseconds
	statuses [classOther + 1]atomic.Int64

	mu    sync.Mutex
	hosts map[string]int64
}

func NewMetrics() *Metrics { return &Metrics{hosts: make(map[string]int64)} }

// IncRequest counts one logical request, independent of retries.
func (m *Metrics) IncRequest(host, method string) {
	m.requests.Add(1)
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead:
		m.reads.Add(1)
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		m.writes.Add(1)
	}
	m.mu.Lock()
	m.hosts[host]++
	m.mu.Unlock()
}

func (m *Metrics) IncRetry() { m.retries.Add(1) }

func (m *Metrics) AddBackoff(d time.Duration) { m.backoff.Add(int64(d)) }

// IncStatus counts a response by class. 429 is kept apart from other 4xx.
func (m *Metrics) IncStatus(code int) { m.statuses[classify(code)].Add(1) }

// MetricsSnapshot is a read-only copy of metrics state.
type MetricsSnapshot struct {
	TotalRequests int64
	TotalRetries  int64
	TotalBackoff  time.Duration
	HostCounts    map[string]int64
	ReadRequests  int64
	WriteRequests int64
	Status2xx     int64
	Status4xx     int64
	Status429     int64
	Status5xx     int64
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	hosts := make(map[string]int64, len(m.hosts))
	for k, v := range m.hosts {
		hosts[k] = v
	}
	m.mu.Unlock()
	return MetricsSnapshot{
		TotalRequests: m.requests.Load(),
		TotalRetries:  m.retries.Load(),
		TotalBackoff:  time.Duration(m.backoff.Load()),
		HostCounts:    hosts,
		ReadRequests:  m.reads.Load(),
		WriteRequests: m.writes.Load(),
		Status2xx:     m.statuses[class2xx].Load(),
		Status4xx:     m.statuses[class4xx].Load(),
		Status429:     m.statuses[class429].Load(),
		Status5xx:     m.statuses[class5xx].Load(),
	}
}

// Summary is a one-line digest for status bars. Empty before the first request.
func (s MetricsSnapshot) Summary() string {
	if s.TotalRequests == 0 {
		return ""
	}
	out := fmt.Sprintf("requests %d (%d read, %d write) · retries %d", s.TotalRequests, s.ReadRequests, s.WriteRequests, s.TotalRetries)
	if s.Status429 > 0 || s.Status5xx > 0 {
		out += fmt.Sprintf(" · 429 %d · 5xx %d", s.Status429, s.Status5xx)
	}
	if s.TotalBackoff > 0 {
		out += " · waited " + s.TotalBackoff.Round(time.Millisecond).String()
	}
	return out
}

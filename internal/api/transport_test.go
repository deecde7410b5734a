package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock allows deterministic control of time passage.
type fakeClock struct {
	now   time.Time
	slept time.Duration
}

func newFakeClock() *fakeClock              { return &fakeClock{now: time.Unix(1_700_000_000, 0)} }
func (fc *fakeClock) Now() time.Time        { return fc.now }
func (fc *fakeClock) Sleep(d time.Duration) { fc.now = fc.now.Add(d); fc.slept += d }

// fakeRT returns a queued series of responses or errors.
type fakeRT struct {
	calls  atomic.Int64
	queue  []any // *http.Response or error
	bodies []string
}

func (frt *fakeRT) RoundTrip(req *http.Request) (*http.Response, error) {
	idx := frt.calls.Add(1) - 1
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		frt.bodies = append(frt.bodies, string(b))
	}
	if int(idx) >= len(frt.queue) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}
	switch item := frt.queue[idx].(type) {
	case *http.Response:
		if item.Body == nil {
			item.Body = http.NoBody
		}
		return item, nil
	case error:
		return nil, item
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func newReq(host string) *http.Request {
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://"+host+"/api/molecules/", nil)
	return req
}

func fastOpts(fc *fakeClock, retryMax int) TransportOptions {
	return TransportOptions{
		RetryMax:    retryMax,
		BackoffBase: 250 * time.Millisecond,
		BackoffCap:  5 * time.Second,
		Clock:       fc,
		JitterFn:    func(time.Duration, int) time.Duration { return 0 },
		Metrics:     NewMetrics(),
		HostLimits:  map[string]Limit{"api.test": {RPS: 1000, Burst: 1000}},
	}
}

func status(code int, header ...string) *http.Response {
	h := http.Header{}
	for i := 0; i+1 < len(header); i += 2 {
		h.Set(header[i], header[i+1])
	}
	return &http.Response{StatusCode: code, Header: h, Body: http.NoBody}
}

func TestRetryOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		retryMax  int
		queue     []any
		wantCode  int
		wantCalls int64
		minSlept  time.Duration
		maxSlept  time.Duration
		check     func(t *testing.T, m MetricsSnapshot)
	}{
		{
			name:      "retry-after seconds",
			retryMax:  2,
			queue:     []any{status(429, "Retry-After", "2"), status(200)},
			wantCode:  200,
			wantCalls: 2,
			minSlept:  2 * time.Second,
			maxSlept:  2100 * time.Millisecond,
			check: func(t *testing.T, m MetricsSnapshot) {
				if m.TotalRetries != 1 || m.Status429 != 1 {
					t.Fatalf("unexpected metrics: %+v", m)
				}
			},
		},
		{
			// 250ms then 500ms
			name:      "exponential backoff on 5xx",
			retryMax:  3,
			queue:     []any{status(503), status(502), status(200)},
			wantCode:  200,
			wantCalls: 3,
			minSlept:  750 * time.Millisecond,
			maxSlept:  750 * time.Millisecond,
		},
		{
			name:      "exhausted returns last response",
			retryMax:  1,
			queue:     []any{status(503), status(503)},
			wantCode:  503,
			wantCalls: 2,
			minSlept:  250 * time.Millisecond,
			maxSlept:  250 * time.Millisecond,
		},
		{
			name:      "client errors are final",
			retryMax:  3,
			queue:     []any{status(400)},
			wantCode:  400,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := newFakeClock()
			opt := fastOpts(fc, tt.retryMax)
			frt := &fakeRT{queue: tt.queue}
			tr := NewRetryingLimiterTransport(opt)
			tr.Base = frt

			resp, err := tr.RoundTrip(newReq("api.test"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tt.wantCode || frt.calls.Load() != tt.wantCalls {
				t.Fatalf("status=%d calls=%d", resp.StatusCode, frt.calls.Load())
			}
			if fc.slept < tt.minSlept || fc.slept > tt.maxSlept {
				t.Fatalf("slept %v, want %v..%v", fc.slept, tt.minSlept, tt.maxSlept)
			}
			if tt.check != nil {
				tt.check(t, opt.Metrics.Snapshot())
			}
		})
	}
}

func TestLimiterPacing(t *testing.T) {
	fc := newFakeClock()
	opt := fastOpts(fc, 0)
	opt.HostLimits = map[string]Limit{"api.test": {RPS: 2, Burst: 1}}
	frt := &fakeRT{}
	tr := NewRetryingLimiterTransport(opt)
	tr.Base = frt

	// 2 rps with burst 1: the second and third requests each wait ~0.5s.
	for i := 0; i < 3; i++ {
		if _, err := tr.RoundTrip(newReq("api.test")); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if fc.slept < 900*time.Millisecond || fc.slept > 1100*time.Millisecond {
		t.Fatalf("expected ~1s sleep due to limiter, got %v", fc.slept)
	}
}

func TestDefaultLimitAppliesToUnknownHosts(t *testing.T) {
	fc := newFakeClock()
	opt := fastOpts(fc, 0)
	opt.HostLimits = nil
	opt.Limit = Limit{RPS: 4, Burst: 1}
	tr := NewRetryingLimiterTransport(opt)
	tr.Base = &fakeRT{}

	_, _ = tr.RoundTrip(newReq("other.test"))
	_, _ = tr.RoundTrip(newReq("other.test"))
	if fc.slept < 200*time.Millisecond || fc.slept > 300*time.Millisecond {
		t.Fatalf("expected ~250ms sleep, got %v", fc.slept)
	}
}

type transientErr struct{}

func (transientErr) Error() string   { return "temporary network error" }
func (transientErr) Timeout() bool   { return false }
func (transientErr) Temporary() bool { return true }

func TestTransientErrorIsRetried(t *testing.T) {
	fc := newFakeClock()
	frt := &fakeRT{queue: []any{transientErr{}, &http.Response{StatusCode: 200, Body: http.NoBody}}}
	tr := NewRetryingLimiterTransport(fastOpts(fc, 1))
	tr.Base = frt

	rc := &RetryCounters{}
	req, _ := http.NewRequestWithContext(WithRetryCounters(context.Background(), rc), http.MethodGet, "http://api.test/x", nil)
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 || rc.Net != 1 || rc.Total != 1 {
		t.Fatalf("status=%d counters=%+v", resp.StatusCode, rc)
	}
}

func TestCancelledContext(t *testing.T) {
	fc := newFakeClock()
	frt := &fakeRT{queue: []any{transientErr{}, &http.Response{StatusCode: 200, Body: http.NoBody}}}
	tr := NewRetryingLimiterTransport(fastOpts(fc, 1))
	tr.Base = frt

	ctx, cancel := context.WithCancel(context.Background())
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://api.test/x", nil)
	cancel()
	if _, err := tr.RoundTrip(req); err == nil {
		t.Fatalf("expected error due to cancellation")
	}
	if frt.calls.Load() != 0 {
		t.Fatalf("cancelled request must not reach the network")
	}
}

func TestPostBodyReplayedOnRetry(t *testing.T) {
	fc := newFakeClock()
	frt := &fakeRT{queue: []any{
		&http.Response{StatusCode: 502, Body: http.NoBody},
		&http.Response{StatusCode: 201, Body: http.NoBody},
	}}
	tr := NewRetryingLimiterTransport(fastOpts(fc, 1))
	tr.Base = frt

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "http://api.test/api/molecules/", io.NopCloser(strings.NewReader(`{"smiles":"C"}`)))
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	if len(frt.bodies) != 2 || frt.bodies[0] != frt.bodies[1] || frt.bodies[1] != `{"smiles":"C"}` {
		t.Fatalf("bodies = %q", frt.bodies)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"-1", 0},
		{"soon", 0},
		{now.Add(10 * time.Second).Format(http.TimeFormat), 10 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in, now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBackoffIsCapped(t *testing.T) {
	fc := newFakeClock()
	opt := fastOpts(fc, 0)
	opt.BackoffBase = time.Second
	opt.BackoffCap = 3 * time.Second
	tr := NewRetryingLimiterTransport(opt)
	if err := tr.sleepBackoff(context.Background(), 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.slept != 3*time.Second {
		t.Fatalf("expected capped 3s, got %v", fc.slept)
	}
}

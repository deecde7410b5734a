package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"molecule-browser/internal/infra/logx"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Limit defines a rate limit: RPS with a burst capacity.
type Limit struct {
	RPS   float64
	Burst int
}

// DefaultLimit applies to hosts without an explicit entry.
var DefaultLimit = Limit{RPS: 5, Burst: 5}

// TransportOptions configures the retrying, rate-limited transport.
type TransportOptions struct {
	RetryMax    int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	JitterFn    func(base time.Duration, attempt int) time.Duration
	Clock       Clock
	Metrics     *Metrics

	// Limit is used for every host missing from HostLimits.
	Limit      Limit
	HostLimits map[string]Limit
}

// DefaultTransportOptions returns production defaults with full jitter.
func DefaultTransportOptions() TransportOptions {
	return TransportOptions{
		RetryMax:    3,
		BackoffBase: 250 * time.Millisecond,
		BackoffCap:  5 * time.Second,
		Clock:       realClock{},
		JitterFn: func(base time.Duration, _ int) time.Duration {
			if base <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(base.Nanoseconds()))
		},
		Metrics: NewMetrics(),
		Limit:   DefaultLimit,
	}
}

// RetryingLimiterTransport paces requests per host and retries throttled,
// unavailable and transient network failures.
type RetryingLimiterTransport struct {
	Base http.RoundTripper
	Opts TransportOptions

	limMu    sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewRetryingLimiterTransport(opts TransportOptions) *RetryingLimiterTransport {
	return &RetryingLimiterTransport{Opts: opts, limiters: make(map[string]*rate.Limiter)}
}

// limitFor resolves the configured limit for host: its own entry, then the
// transport-wide limit, then DefaultLimit.
func (t *RetryingLimiterTransport) limitFor(host string) Limit {
	if l, ok := t.Opts.HostLimits[host]; ok && l.RPS > 0 {
		return l
	}
	if t.Opts.Limit.RPS > 0 {
		return t.Opts.Limit
	}
	return DefaultLimit
}

func (t *RetryingLimiterTransport) limiter(host string) *rate.Limiter {
	t.limMu.Lock()
	defer t.limMu.Unlock()
	if t.limiters == nil {
		t.limiters = make(map[string]*rate.Limiter)
	}
	l, ok := t.limiters[host]
	if !ok {
		lim := t.limitFor(host)
		l = rate.NewLimiter(rate.Limit(lim.RPS), max(1, lim.Burst))
		t.limiters[host] = l
	}
	return l
}

func (t *RetryingLimiterTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *RetryingLimiterTransport) clock() Clock {
	if t.Opts.Clock != nil {
		return t.Opts.Clock
	}
	return realClock{}
}

// sleep waits d on the configured clock. Only the real clock can be
// interrupted by ctx.
func (t *RetryingLimiterTransport) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	c := t.clock()
	if _, ok := c.(realClock); !ok {
		c.Sleep(d)
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// wait takes one token from l. The reservation is made against the clock so
// a fake clock drives pacing in tests.
func (t *RetryingLimiterTransport) wait(ctx context.Context, l *rate.Limiter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := t.clock().Now()
	r := l.ReserveN(now, 1)
	if !r.OK() {
		return errors.New("rate limit burst exceeded")
	}
	if err := t.sleep(ctx, r.DelayFrom(now)); err != nil {
		r.CancelAt(t.clock().Now())
		return err
	}
	return nil
}

// Rate adjustments per outcome. The rate stays within [1, configured RPS].
const (
	rateOnSuccess    = +0.02
	rateOnNetError   = -0.1
	rateOnBackoff    = -0.2
	rateOnRetryAfter = -0.3
)

func (t *RetryingLimiterTransport) adjust(l *rate.Limiter, host string, delta float64) {
	next := float64(l.Limit()) + delta
	next = math.Max(1, math.Min(next, t.limitFor(host).RPS))
	l.SetLimitAt(t.clock().Now(), rate.Limit(next))
}

// replayable buffers a one-shot body so every attempt can resend it.
func replayable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	buf, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return err
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}
	req.Body, _ = req.GetBody()
	return nil
}

func (t *RetryingLimiterTransport) attempts() int { return max(1, t.Opts.RetryMax+1) }

func (t *RetryingLimiterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := replayable(req); err != nil {
		return nil, err
	}
	ctx := req.Context()
	host := req.URL.Host
	lim := t.limiter(host)
	metrics := t.Opts.Metrics
	if metrics != nil {
		metrics.IncRequest(host, req.Method)
	}

	for attempt := 0; ; attempt++ {
		if err := t.wait(ctx, lim); err != nil {
			return nil, err
		}
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}

		resp, err := t.base().RoundTrip(req)
		final := attempt >= t.attempts()-1

		var cause retryCause
		switch {
		case err != nil:
			if final || ctx.Err() != nil || !isTransientNetErr(err) {
				return nil, err
			}
			cause = causeNetwork
		default:
			if metrics != nil {
				metrics.IncStatus(resp.StatusCode)
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				t.adjust(lim, host, rateOnSuccess)
			}
			if final || !shouldRetryStatus(resp.StatusCode) {
				return resp, nil
			}
			cause = causeForStatus(resp.StatusCode)
		}

		getRetryCounters(ctx).record(cause)
		if metrics != nil {
			metrics.IncRetry()
		}

		if err != nil {
			logx.Debugf("retry %s %s after network error: %v", req.Method, req.URL.Path, err)
			t.adjust(lim, host, rateOnNetError)
			if err := t.sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		logx.Debugf("retry %s %s after status %d", req.Method, req.URL.Path, resp.StatusCode)
		resp.Body.Close()
		ra := parseRetryAfter(resp.Header.Get("Retry-After"), t.clock().Now())
		if ra <= 0 {
			t.adjust(lim, host, rateOnBackoff)
			if err := t.sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}
		t.adjust(lim, host, rateOnRetryAfter)
		ra = min(ra, t.backoffCap())
		if metrics != nil {
			metrics.AddBackoff(ra)
		}
		if err := t.sleep(ctx, ra); err != nil {
			return nil, err
		}
	}
}

func (t *RetryingLimiterTransport) backoffCap() time.Duration {
	if t.Opts.BackoffCap > 0 {
		return t.Opts.BackoffCap
	}
	return 5 * time.Second
}

// backoff is base*2^attempt plus jitter, capped.
func (t *RetryingLimiterTransport) backoff(attempt int) time.Duration {
	base := t.Opts.BackoffBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	limit := t.backoffCap()
	d := min(time.Duration(float64(base)*math.Pow(2, float64(attempt))), limit)
	if t.Opts.JitterFn != nil {
		d += t.Opts.JitterFn(d, attempt)
	}
	return min(d, limit)
}

func (t *RetryingLimiterTransport) sleepBackoff(ctx context.Context, attempt int) error {
	d := t.backoff(attempt)
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.AddBackoff(d)
	}
	return t.sleep(ctx, d)
}

func isTransientNetErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "temporary") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused")
}

func shouldRetryStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func parseRetryAfter(h string, now time.Time) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(h); err == nil {
		d := when.Sub(now)
		if d < 0 {
			return 0
		}
		return d
	}
	return 0
}

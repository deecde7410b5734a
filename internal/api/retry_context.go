package api

import (
	"context"
	"fmt"
	"net/http"
)

type retryCtxKey struct{}

// RetryCounters attributes retries to the request context that carries it.
type RetryCounters struct {
	Total     int64
	Status429 int64
	Status5xx int64
	Net       int64
}

type retryCause int

const (
	causeNetwork retryCause = iota
	causeThrottled
	causeServer
)

func causeForStatus(code int) retryCause {
	if code == http.StatusTooManyRequests {
		return causeThrottled
	}
	return causeServer
}

// record is a no-op on a nil receiver, so callers need not check for counters.
func (rc *RetryCounters) record(c retryCause) {
	if rc == nil {
		return
	}
	rc.Total++
	switch c {
	case causeNetwork:
		rc.Net++
	case causeThrottled:
		rc.Status429++
	case causeServer:
		rc.Status5xx++
	}
}

func (rc RetryCounters) String() string {
	return fmt.Sprintf("%d retries (429=%d 5xx=%d net=%d)", rc.Total, rc.Status429, rc.Status5xx, rc.Net)
}

// WithRetryCounters attaches rc so the transport can record retries made on
// behalf of requests using the returned context.
func WithRetryCounters(ctx context.Context, rc *RetryCounters) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, retryCtxKey{}, rc)
}

func getRetryCounters(ctx context.Context) *RetryCounters {
	if ctx == nil {
		return nil
	}
	rc, _ := ctx.Value(retryCtxKey{}).(*RetryCounters)
	return rc
}

package api

import (
	"context"
	"testing"
)

func TestRetryCountersRoundTrip(t *testing.T) {
	rc := &RetryCounters{}
	ctx := WithRetryCounters(context.Background(), rc)
	if getRetryCounters(ctx) != rc {
		t.Fatal("retrieved counters do not match")
	}
	if getRetryCounters(context.Background()) != nil {
		t.Fatal("expected nil for bare context")
	}
	wrong := context.WithValue(context.Background(), retryCtxKey{}, "nope")
	if getRetryCounters(wrong) != nil {
		t.Fatal("expected nil for wrong value type")
	}
}

func TestRetryCountersIsolation(t *testing.T) {
	rc1 := &RetryCounters{Total: 1}
	rc2 := &RetryCounters{Total: 2}
	ctx1 := WithRetryCounters(context.Background(), rc1)
	ctx2 := WithRetryCounters(ctx1, rc2)
	if getRetryCounters(ctx1) != rc1 || getRetryCounters(ctx2) != rc2 {
		t.Fatal("nested contexts must shadow the parent counters")
	}
}

func TestRetryCountersRecordByCause(t *testing.T) {
	rc := &RetryCounters{}
	rc.record(causeNetwork)
	rc.record(causeForStatus(429))
	rc.record(causeForStatus(503))
	rc.record(causeForStatus(502))
	want := RetryCounters{Total: 4, Status429: 1, Status5xx: 2, Net: 1}
	if *rc != want {
		t.Fatalf("counters = %+v, want %+v", *rc, want)
	}
	if got := rc.String(); got != "4 retries (429=1 5xx=2 net=1)" {
		t.Fatalf("String() = %q", got)
	}

	var none *RetryCounters
	none.record(causeServer) // must not panic
}

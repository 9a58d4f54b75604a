package resilience

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !b.Allow() {
			t.Fatalf("breaker should be closed before threshold, failure %d", i)
		}
		b.Report(false)
	}
	if b.Allow() {
		t.Fatal("breaker should be open after threshold failures")
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	now := time.Now()
	b := NewBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.Allow()
	b.Report(false)
	if b.Allow() {
		t.Fatal("breaker should be open during cooldown")
	}

	now = now.Add(2 * time.Minute)
	if !b.Allow() {
		t.Fatal("breaker should allow one probe after cooldown")
	}
	if b.Allow() {
		t.Fatal("half-open breaker allows only one probe")
	}

	b.Report(true)
	if !b.Allow() {
		t.Fatal("breaker should close after a successful probe")
	}
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	now := time.Now()
	b := NewBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.Allow()
	b.Report(false)
	now = now.Add(2 * time.Minute)
	b.Allow()
	b.Report(false)
	if b.Allow() {
		t.Fatal("breaker should reopen immediately after a failed probe")
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(2, time.Minute)
	b.Allow()
	b.Report(false)
	b.Allow()
	b.Report(true)
	b.Allow()
	b.Report(false)
	if !b.Allow() {
		t.Fatal("a success between failures should reset the count")
	}
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cl := HTTPClient{
		Client:      srv.Client(),
		Breaker:     NewBreaker(10, time.Minute),
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := cl.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after retries, got %d", resp.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestHTTPClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cl := HTTPClient{Client: srv.Client(), MaxAttempts: 3, BaseBackoff: time.Millisecond}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := cl.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if got := calls.Load(); got != 1 {
		t.Fatalf("4xx responses must not be retried, got %d attempts", got)
	}
}

func TestHTTPClientOpenCircuitShortCircuits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	breaker := NewBreaker(1, time.Hour)
	cl := HTTPClient{Client: srv.Client(), Breaker: breaker, MaxAttempts: 3, BaseBackoff: time.Millisecond}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cl.Do(context.Background(), req); err == nil {
		t.Fatal("expected failure")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("breaker should stop retries once open, got %d attempts", got)
	}
}

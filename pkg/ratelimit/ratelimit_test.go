package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func doRequest(h http.Handler, addr string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestLimiterAllowsUpToMax(t *testing.T) {
	h := New(3, time.Minute).Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		if code := doRequest(h, "10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d rejected with %d", i+1, code)
		}
	}
	if code := doRequest(h, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Errorf("request over limit got %d, want 429", code)
	}
	// a different client has its own bucket
	if code := doRequest(h, "10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("second client rejected with %d", code)
	}
}

func TestLimiterWindowResets(t *testing.T) {
	h := New(1, 20*time.Millisecond).Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if code := doRequest(h, "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first request rejected with %d", code)
	}
	if code := doRequest(h, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("second request got %d, want 429", code)
	}
	time.Sleep(30 * time.Millisecond)
	if code := doRequest(h, "10.0.0.1:1234"); code != http.StatusOK {
		t.Errorf("request after window reset got %d", code)
	}
}

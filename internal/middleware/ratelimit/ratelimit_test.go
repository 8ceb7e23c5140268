package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3, CleanupInterval: time.Minute})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("Request over budget should be denied")
	}

	// Other clients have their own budget.
	if !rl.Allow("5.6.7.8") {
		t.Error("Different client should be allowed")
	}

	metrics := rl.GetMetrics()
	if metrics.TotalHits != 1 {
		t.Errorf("Expected 1 limit hit, got %d", metrics.TotalHits)
	}
	if metrics.ClientCount != 2 {
		t.Errorf("Expected 2 tracked clients, got %d", metrics.ClientCount)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	extractIP := func(r *http.Request) string { return "9.9.9.9" }
	handler := rl.Middleware(Config{MutatingOnly: true}, extractIP, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	do := func(method string) int {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(method, "/api/gastos", nil))
		return rec.Code
	}

	if code := do(http.MethodPost); code != http.StatusOK {
		t.Errorf("First POST should pass, got %d", code)
	}
	if code := do(http.MethodPost); code != http.StatusTooManyRequests {
		t.Errorf("Second POST should be limited, got %d", code)
	}

	// Reads bypass the budget when MutatingOnly is set.
	for i := 0; i < 5; i++ {
		if code := do(http.MethodGet); code != http.StatusOK {
			t.Errorf("GET %d should bypass limiting, got %d", i+1, code)
		}
	}
}

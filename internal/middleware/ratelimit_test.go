package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/memelandia/internal/model"
)

func newTestLimiter(t *testing.T, perSec rate.Limit, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimiterConfig{
		CreateRate:      perSec,
		CreateBurst:     burst,
		CleanupInterval: time.Minute,
	}, nil)
	t.Cleanup(rl.Stop)
	return rl
}

func postFrom(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/memes", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
}

func TestNewRateLimiterConfig(t *testing.T) {
	cfg := NewRateLimiterConfig(60)

	if cfg.CreateRate != rate.Limit(1) {
		t.Errorf("CreateRate = %v, want 1", cfg.CreateRate)
	}
	if cfg.CreateBurst != 60 {
		t.Errorf("CreateBurst = %d, want 60", cfg.CreateBurst)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
	}
}

func TestCreateMiddleware_AllowsRequestsWithinBurst(t *testing.T) {
	rl := newTestLimiter(t, 1, 5)
	handler := rl.CreateMiddleware()(okHandler())

	for i := 0; i < 5; i++ {
		if w := postFrom(handler, "10.0.0.1:1234"); w.Code != http.StatusCreated {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusCreated)
		}
	}
}

func TestCreateMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	rl := newTestLimiter(t, 0.5, 2)
	handler := rl.CreateMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		postFrom(handler, "10.0.0.1:1234")
	}

	w := postFrom(handler, "10.0.0.1:5678")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After is not an integer: %q", w.Header().Get("Retry-After"))
	}
	if retryAfter != 2 {
		t.Errorf("Retry-After = %d, want 2", retryAfter)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != model.ErrCodeRateLimitExceeded {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeRateLimitExceeded)
	}
}

func TestCreateMiddleware_SeparateLimitPerClient(t *testing.T) {
	rl := newTestLimiter(t, 0.1, 1)
	handler := rl.CreateMiddleware()(okHandler())

	if w := postFrom(handler, "10.0.0.1:1"); w.Code != http.StatusCreated {
		t.Fatalf("first client: status = %d", w.Code)
	}
	if w := postFrom(handler, "10.0.0.1:2"); w.Code != http.StatusTooManyRequests {
		t.Errorf("first client second request: status = %d, want 429", w.Code)
	}
	if w := postFrom(handler, "10.0.0.2:1"); w.Code != http.StatusCreated {
		t.Errorf("second client: status = %d, want 201", w.Code)
	}

	if got := rl.LimiterCount(); got != 2 {
		t.Errorf("LimiterCount = %d, want 2", got)
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	rl := newTestLimiter(t, 1, 1)
	handler := rl.CreateMiddleware()(okHandler())

	postFrom(handler, "10.0.0.1:1")
	postFrom(handler, "10.0.0.2:1")

	rl.cleanup(time.Now())
	if got := rl.LimiterCount(); got != 2 {
		t.Fatalf("fresh entries should survive cleanup, got %d", got)
	}

	rl.cleanup(time.Now().Add(3 * time.Minute))
	if got := rl.LimiterCount(); got != 0 {
		t.Errorf("LimiterCount = %d, want 0 after cleanup", got)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(NewRateLimiterConfig(10), nil)
	rl.Stop()
	rl.Stop()
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.168.1.10:54321", "192.168.1.10"},
		{"[::1]:8080", "::1"},
		{"203.0.113.5", "203.0.113.5"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/users", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := clientKey(req); got != tt.want {
			t.Errorf("clientKey(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}

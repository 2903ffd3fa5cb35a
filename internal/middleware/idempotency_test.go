package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupIdempotency(t *testing.T) (*redis.Client, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return cache, mr, cleanup
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	cache, _, cleanup := setupIdempotency(t)
	defer cleanup()

	calls := 0
	handler := Idempotency(cache, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true}`))
	}))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/purchase/airtime", strings.NewReader("{}"))
	req.Header.Set(idempotencyKeyHeader, "abc123")
	handler.ServeHTTP(first, req)

	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/purchase/airtime", strings.NewReader("{}"))
	req2.Header.Set(idempotencyKeyHeader, "abc123")
	handler.ServeHTTP(second, req2)

	if calls != 1 {
		t.Fatalf("handler must run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated {
		t.Errorf("replay must carry the stored status, got %d", second.Code)
	}
	firstBody, _ := io.ReadAll(first.Result().Body)
	secondBody, _ := io.ReadAll(second.Result().Body)
	if string(firstBody) != string(secondBody) {
		t.Errorf("replay body %q differs from original %q", secondBody, firstBody)
	}
}

func TestIdempotencyInFlightConflicts(t *testing.T) {
	cache, mr, cleanup := setupIdempotency(t)
	defer cleanup()

	mr.Set(idempotencyPrefix+"inflight", inProgressMarker)

	handler := Idempotency(cache, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run while the key is in flight")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/purchase/airtime", strings.NewReader("{}"))
	req.Header.Set(idempotencyKeyHeader, "inflight")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestIdempotencyConcurrentDuplicateConflicts(t *testing.T) {
	cache, _, cleanup := setupIdempotency(t)
	defer cleanup()

	entered := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	handler := Idempotency(cache, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	}))

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/purchase/airtime", strings.NewReader("{}"))
		req.Header.Set(idempotencyKeyHeader, "race-1")
		handler.ServeHTTP(rec, req)
	}()

	<-entered

	// Duplicate arrives while the first request is still in the handler.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/purchase/airtime", strings.NewReader("{}"))
	req.Header.Set(idempotencyKeyHeader, "race-1")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for the concurrent duplicate, got %d", rec.Code)
	}

	close(release)
	<-firstDone

	if calls != 1 {
		t.Fatalf("handler must run once, ran %d times", calls)
	}
}

func TestIdempotencyMissingKeyPassesThrough(t *testing.T) {
	cache, _, cleanup := setupIdempotency(t)
	defer cleanup()

	calls := 0
	handler := Idempotency(cache, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/purchase/airtime", strings.NewReader("{}"))
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Fatalf("requests without a key are not deduplicated, got %d calls", calls)
	}
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	cache, _, cleanup := setupIdempotency(t)
	defer cleanup()

	fail := true
	calls := 0
	handler := Idempotency(cache, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/purchase/airtime", strings.NewReader("{}"))
	req.Header.Set(idempotencyKeyHeader, "retryable")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	fail = false
	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/purchase/airtime", strings.NewReader("{}"))
	req2.Header.Set(idempotencyKeyHeader, "retryable")
	handler.ServeHTTP(rec2, req2)

	if rec2.Code != http.StatusOK {
		t.Errorf("retry after a server fault must reach the handler, got %d", rec2.Code)
	}
	if calls != 2 {
		t.Errorf("expected 2 handler runs, got %d", calls)
	}
}

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeomarSanguenza/pos-core/internal/session"
)

func newTestBatcher(t *testing.T, handler http.Handler, window time.Duration) *Batcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, Retry: fastPolicy()}, session.New(), nil, nil)
	return NewBatcher(client, window)
}

func echoPath() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	})
}

func TestBatcher_CoalescesBurstIntoOneFlush(t *testing.T) {
	b := newTestBatcher(t, echoPath(), 50*time.Millisecond)

	var mu sync.Mutex
	var flushes [][]string
	b.onFlush = func(paths []string) {
		mu.Lock()
		flushes = append(flushes, paths)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	for _, path := range []string{"/a", "/b", "/c"} {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			var out struct {
				Path string `json:"path"`
			}
			assert.NoError(t, b.Get(context.Background(), path, &out))
			assert.Equal(t, path, out.Path, "each caller gets its own result")
		}(path)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, flushes, 1, "a burst inside the window is one flush")
	got := append([]string(nil), flushes[0]...)
	sort.Strings(got)
	assert.Equal(t, []string{"/a", "/b", "/c"}, got)
}

func TestBatcher_CallAfterFlushStartsNewBatch(t *testing.T) {
	b := newTestBatcher(t, echoPath(), 20*time.Millisecond)

	var mu sync.Mutex
	var flushes int
	b.onFlush = func([]string) {
		mu.Lock()
		flushes++
		mu.Unlock()
	}

	require.NoError(t, b.Get(context.Background(), "/first", nil))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, b.Get(context.Background(), "/second", nil))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, flushes)
}

func TestBatcher_TimerResetsOnEachEnqueue(t *testing.T) {
	b := newTestBatcher(t, echoPath(), 40*time.Millisecond)

	var mu sync.Mutex
	var flushes int
	b.onFlush = func([]string) {
		mu.Lock()
		flushes++
		mu.Unlock()
	}

	var wg sync.WaitGroup
	// Three calls 25ms apart: each re-arms the 40ms timer, so all of
	// them land in the same batch.
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, b.Get(context.Background(), "/spaced", nil))
		}()
		time.Sleep(25 * time.Millisecond)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, flushes)
}

func TestBatcher_FailuresSettleIndependently(t *testing.T) {
	b := newTestBatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"no such resource"}`))
			return
		}
		w.Write([]byte(`{}`))
	}), 20*time.Millisecond)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, path := range []string{"/good", "/bad"} {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			errs[i] = b.Get(context.Background(), path, nil)
		}(i, path)
	}
	wg.Wait()

	assert.NoError(t, errs[0], "sibling failure must not poison this caller")
	require.Error(t, errs[1])
	assert.Equal(t, 404, StatusCode(errs[1]))
}

func TestBatcher_NoDeduplication(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	b := newTestBatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Write([]byte(`{}`))
	}), 20*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, b.Get(context.Background(), "/same", nil))
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, hits, "identical keys in one window each hit the network")
}

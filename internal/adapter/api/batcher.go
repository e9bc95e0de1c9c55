package api

import (
	"context"
	"net/http"
	"sync"
	"time"
)

type batchResult struct {
	payload []byte
	err     error
}

type batchEntry struct {
	path string
	done chan batchResult
}

// Batcher coalesces GET calls issued close together into one concurrent
// dispatch. Each call resets the flush timer, so a burst lands in a
// single batch; a call arriving after the flush opens the next one.
// Identical paths in one window are not deduplicated, every caller gets
// its own request.
type Batcher struct {
	client *Client
	window time.Duration

	mu    sync.Mutex
	queue []*batchEntry
	timer *time.Timer

	// test seam, called as a batch starts dispatching
	onFlush func(paths []string)
}

func NewBatcher(client *Client, window time.Duration) *Batcher {
	if window <= 0 {
		window = defaultBatchWindow
	}
	return &Batcher{client: client, window: window}
}

// Get enqueues path for the current window and blocks until its own
// request settles. Failures of sibling requests in the same batch do not
// affect this caller.
func (b *Batcher) Get(ctx context.Context, path string, out any) error {
	e := &batchEntry{path: path, done: make(chan batchResult, 1)}

	b.mu.Lock()
	b.queue = append(b.queue, e)
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.window, b.flush)
	b.mu.Unlock()

	select {
	case res := <-e.done:
		if res.err != nil {
			return res.err
		}
		return decode(res.payload, out)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// flush swaps the queue for an empty one and dispatches every entry
// concurrently, settling each caller independently.
func (b *Batcher) flush() {
	b.mu.Lock()
	batch := b.queue
	b.queue = nil
	b.timer = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if b.onFlush != nil {
		paths := make([]string, len(batch))
		for i, e := range batch {
			paths[i] = e.path
		}
		b.onFlush(paths)
	}

	var wg sync.WaitGroup
	for _, e := range batch {
		wg.Add(1)
		go func(e *batchEntry) {
			defer wg.Done()
			payload, err := b.client.send(context.Background(), http.MethodGet, e.path, nil, nil)
			e.done <- batchResult{payload: payload, err: err}
		}(e)
	}
	wg.Wait()
}

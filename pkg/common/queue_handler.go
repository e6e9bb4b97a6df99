package common

import (
	"context"
	"iter"
	"slices"
	"sync"
	"time"
)

// QueueProcessor processes a batch of items from the queue.
type QueueProcessor[V any] func(items []V)

// QueueHandler collects items and hands them to the processor in chunks from a background goroutine.
type QueueHandler[V any] struct {
	mu        sync.Mutex
	queue     []V
	processor QueueProcessor[V]
	chunkSize int
	interval  time.Duration
	wake      chan struct{}
	done      chan struct{}
}

func NewQueueHandler[V any](ctx context.Context, processor QueueProcessor[V], chunkSize int, interval time.Duration) *QueueHandler[V] {
	if chunkSize <= 0 {
		chunkSize = 100
	}
	if interval <= 0 {
		interval = time.Second
	}
	q := &QueueHandler[V]{
		queue:     make([]V, 0),
		processor: processor,
		chunkSize: chunkSize,
		interval:  interval,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go q.processQueue(ctx)
	return q
}

func (h *QueueHandler[V]) Add(item ...V) {
	h.mu.Lock()
	h.queue = append(h.queue, item...)
	full := len(h.queue) >= h.chunkSize
	h.mu.Unlock()
	if full {
		select {
		case h.wake <- struct{}{}:
		default:
		}
	}
}

func (h *QueueHandler[V]) AddIter(item iter.Seq[V]) {
	h.Add(slices.Collect(item)...)
}

func (h *QueueHandler[V]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// Flush processes everything queued on the calling goroutine.
func (h *QueueHandler[V]) Flush() {
	for {
		items := h.next()
		if len(items) == 0 {
			return
		}
		h.processor(items)
	}
}

// Done is closed when the background loop has stopped and the queue is drained.
func (h *QueueHandler[V]) Done() <-chan struct{} {
	return h.done
}

func (h *QueueHandler[V]) next() []V {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) == 0 {
		return nil
	}
	items := slices.Clone(h.queue[:min(h.chunkSize, len(h.queue))])
	h.queue = h.queue[len(items):]
	return items
}

func (h *QueueHandler[V]) processQueue(ctx context.Context) {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.Flush()
			return
		case <-ticker.C:
		case <-h.wake:
		}
		h.Flush()
	}
}

package common

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueHandlerProcessesInChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mu := sync.Mutex{}
	batches := make([][]int, 0)
	q := NewQueueHandler(ctx, func(items []int) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, items)
	}, 2, time.Hour)

	q.Add(1, 2, 3)
	q.Add(4, 5)
	cancel()

	select {
	case <-q.Done():
	case <-time.After(5 * time.Second):
		require.FailNow(t, "queue did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	total := make([]int, 0)
	for _, b := range batches {
		assert.LessOrEqual(t, len(b), 2)
		total = append(total, b...)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, total)
	assert.Equal(t, 0, q.Len())
}

func TestQueueHandlerFlush(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make([]string, 0)
	mu := sync.Mutex{}
	q := NewQueueHandler(ctx, func(items []string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, items...)
	}, 10, time.Hour)

	q.Add("a", "b")
	q.Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, got)
}

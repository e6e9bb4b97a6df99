package messaging

import (
	"context"
	"time"

	"github.com/matst80/slask-parts/pkg/common"
	"github.com/matst80/slask-parts/pkg/logx"
	"github.com/matst80/slask-parts/pkg/types"
)

// ChangePublisher forwards index mutations on the admin node to the readers.
// Upserts are batched, deletes are sent right away.
type ChangePublisher struct {
	publisher Publisher
	queue     *common.QueueHandler[*types.Product]
}

func NewChangePublisher(ctx context.Context, publisher Publisher, batchSize int, interval time.Duration) *ChangePublisher {
	c := &ChangePublisher{publisher: publisher}
	c.queue = common.NewQueueHandler(ctx, c.send, batchSize, interval)
	return c
}

func (c *ChangePublisher) send(items []*types.Product) {
	if err := c.publisher.Publish(ProductsUpserted, items); err != nil {
		logx.Error().Err(err).Int("items", len(items)).Msg("failed to publish upserts")
		return
	}
	logx.Info().Int("items", len(items)).Msg("published upserts")
}

func (c *ChangePublisher) ItemsUpserted(items []*types.Product) {
	if len(items) == 0 {
		return
	}
	c.queue.Add(items...)
}

func (c *ChangePublisher) ItemDeleted(id types.ProductId) {
	if err := c.publisher.Publish(ProductDeleted, id); err != nil {
		logx.Error().Err(err).Uint("id", uint(id)).Msg("failed to publish delete")
	}
}

// Flush publishes queued upserts immediately.
func (c *ChangePublisher) Flush() {
	c.queue.Flush()
}

// Done is closed once the context is cancelled and the last batch is sent.
func (c *ChangePublisher) Done() <-chan struct{} {
	return c.queue.Done()
}

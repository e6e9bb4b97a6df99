package messaging

import (
	"fmt"
	"slices"

	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
	"github.com/matst80/slask-parts/pkg/logx"
	"github.com/matst80/slask-parts/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

// UpsertHandler applies a batch of products from the change feed.
func UpsertHandler(handlers ...types.ItemHandler) func(amqp.Delivery) error {
	return func(d amqp.Delivery) error {
		var items []*types.Product
		if err := jsoncompat.Unmarshal(d.Body, &items); err != nil {
			return fmt.Errorf("decode upserts: %w", err)
		}
		logx.Debug().Int("items", len(items)).Msg("got upserts")
		for _, h := range handlers {
			if err := h.HandleItems(slices.Values(items)); err != nil {
				logx.Warn().Err(err).Msg("some upserts were rejected")
			}
		}
		return nil
	}
}

// DeleteHandler applies a delete as a tombstone so receivers do not notify again.
func DeleteHandler(handlers ...types.ItemHandler) func(amqp.Delivery) error {
	return func(d amqp.Delivery) error {
		var id types.ProductId
		if err := jsoncompat.Unmarshal(d.Body, &id); err != nil {
			return fmt.Errorf("decode delete: %w", err)
		}
		tombstone := []*types.Product{{Id: id, Deleted: true}}
		for _, h := range handlers {
			if err := h.HandleItems(slices.Values(tombstone)); err != nil {
				return err
			}
		}
		return nil
	}
}

// ConnectReader subscribes a reader node to the product change topics.
func ConnectReader(conn *amqp.Connection, prefix string, handlers ...types.ItemHandler) error {
	topics := map[ChangeTopic]func(amqp.Delivery) error{
		ProductsUpserted: UpsertHandler(handlers...),
		ProductDeleted:   DeleteHandler(handlers...),
	}
	for topic, handler := range topics {
		ch, err := conn.Channel()
		if err != nil {
			return err
		}
		if err = DeclareTopic(ch, prefix, topic); err != nil {
			ch.Close()
			return err
		}
		if err = ListenToTopic(ch, prefix, topic, handler); err != nil {
			ch.Close()
			return fmt.Errorf("listen to %s: %w", topic, err)
		}
		logx.Info().Str("topic", string(topic)).Msg("listening for changes")
	}
	return nil
}

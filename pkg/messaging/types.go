package messaging

type ChangeTopic string

const (
	ProductsUpserted ChangeTopic = "product_upserted"
	ProductDeleted   ChangeTopic = "product_deleted"
	QuoteRequested   ChangeTopic = "quote_requested"
)

// Durable topics are persisted in a named queue, change topics only reach connected readers.
func (t ChangeTopic) Durable() bool {
	return t == QuoteRequested
}

// Publisher sends a json payload to a topic.
type Publisher interface {
	Publish(topic ChangeTopic, data any) error
}

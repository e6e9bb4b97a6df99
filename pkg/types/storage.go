package types

import (
	"context"
	"iter"
)

type StorageProvider interface {
	SaveItems(items iter.Seq[*Product]) error
	LoadItems(handlers ...ItemHandler) error
	SaveGzippedJson(data any, filename string) error
	LoadGzippedJson(data any, filename string) error
	SaveJson(data any, filename string) error
	LoadJson(data any, filename string) error
}

// ProductSource reads the full catalog from the primary database.
type ProductSource interface {
	LoadProducts(ctx context.Context) ([]*Product, error)
}

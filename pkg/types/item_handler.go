package types

import "iter"

// ItemHandler receives products read from storage or the change feed.
type ItemHandler interface {
	HandleItems(items iter.Seq[*Product]) error
}

package index

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/matst80/slask-parts/pkg/errx"
	"github.com/matst80/slask-parts/pkg/facet"
	"github.com/matst80/slask-parts/pkg/search"
	"github.com/matst80/slask-parts/pkg/sorting"
	"github.com/matst80/slask-parts/pkg/types"
)

// ChangeHandler is notified after the index has been mutated.
type ChangeHandler interface {
	ItemsUpserted(items []*types.Product)
	ItemDeleted(id types.ProductId)
}

type Index struct {
	mu            sync.RWMutex
	items         map[types.ProductId]*types.Product
	list          []*types.Product
	loadErr       error
	Facets        *facet.Engine
	Search        *search.Matcher
	Sorter        *sorting.Sorter
	AutoSuggest   *search.AutoSuggest
	CountMode     facet.CountMode
	ChangeHandler ChangeHandler
}

func NewIndex(engine *facet.Engine, sorter *sorting.Sorter) *Index {
	return &Index{
		items:       make(map[types.ProductId]*types.Product),
		list:        make([]*types.Product, 0),
		Facets:      engine,
		Search:      search.NewMatcher(),
		Sorter:      sorter,
		AutoSuggest: search.NewAutoSuggest(&search.Tokenizer{MaxTokens: 64}),
		CountMode:   facet.CountCrossFiltered,
	}
}

// rebuildList keeps a sorted snapshot so readers never iterate the map. Callers hold the write lock.
func (i *Index) rebuildList() {
	list := make([]*types.Product, 0, len(i.items))
	for _, item := range i.items {
		list = append(list, item)
	}
	slices.SortFunc(list, func(a, b *types.Product) int {
		return cmp.Compare(a.Id, b.Id)
	})
	i.list = list
}

func validate(item *types.Product) error {
	if item.Deleted && item.Id != 0 {
		return nil
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("product %d: %w", item.Id, err)
	}
	return nil
}

// UpsertItems validates every item before applying any of them. Items flagged as deleted are removed.
func (i *Index) UpsertItems(items ...*types.Product) error {
	errs := make([]error, 0)
	for _, item := range items {
		if item == nil {
			continue
		}
		if err := validate(item); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	changed := i.upsert(items)
	if i.ChangeHandler != nil && len(changed) > 0 {
		i.ChangeHandler.ItemsUpserted(changed)
	}
	return nil
}

func (i *Index) upsert(items []*types.Product) []*types.Product {
	i.mu.Lock()
	defer i.mu.Unlock()
	changed := make([]*types.Product, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if item.Deleted {
			delete(i.items, item.Id)
			i.AutoSuggest.RemoveItem(item.Id)
		} else {
			i.items[item.Id] = item
			i.AutoSuggest.InsertItem(item)
		}
		changed = append(changed, item)
	}
	i.rebuildList()
	i.loadErr = nil
	return changed
}

// HandleItems applies items from storage or another node without notifying the ChangeHandler.
// Invalid items are skipped and returned as a joined error.
func (i *Index) HandleItems(items iter.Seq[*types.Product]) error {
	valid := make([]*types.Product, 0)
	errs := make([]error, 0)
	for item := range items {
		if item == nil {
			continue
		}
		if err := validate(item); err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, item)
	}
	i.upsert(valid)
	return errors.Join(errs...)
}

func (i *Index) DeleteItem(id types.ProductId) error {
	i.mu.Lock()
	if _, ok := i.items[id]; !ok {
		i.mu.Unlock()
		return fmt.Errorf("product %d: %w", id, errx.ErrNotFound)
	}
	delete(i.items, id)
	i.AutoSuggest.RemoveItem(id)
	i.rebuildList()
	i.mu.Unlock()

	if i.ChangeHandler != nil {
		i.ChangeHandler.ItemDeleted(id)
	}
	return nil
}

func (i *Index) Get(id types.ProductId) (*types.Product, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	item, ok := i.items[id]
	return item, ok
}

// Items yields a snapshot ordered by id.
func (i *Index) Items() iter.Seq[*types.Product] {
	list := i.snapshot()
	return slices.Values(list)
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.items)
}

// SetUnavailable records a failed load. Queries fail with a 503 until items are upserted.
func (i *Index) SetUnavailable(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.loadErr = err
}

// Ready returns a 503 error while the last catalog load failed.
func (i *Index) Ready() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.loadErr != nil {
		return errx.Unavailable(i.loadErr)
	}
	return nil
}

func (i *Index) snapshot() []*types.Product {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.list
}

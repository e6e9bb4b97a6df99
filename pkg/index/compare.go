package index

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matst80/slask-parts/pkg/errx"
	"github.com/matst80/slask-parts/pkg/table"
	"github.com/matst80/slask-parts/pkg/types"
)

// Compare returns the products for the compare view in the given order. Unknown ids are skipped.
func (i *Index) Compare(ids []types.ProductId) ([]*types.Product, error) {
	list := table.CompareList{}
	for _, id := range ids {
		if err := list.Add(id); err != nil {
			return nil, err
		}
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	ret := make([]*types.Product, 0, list.Len())
	for _, id := range list.Ids {
		if item, ok := i.items[id]; ok {
			ret = append(ret, item)
		}
	}
	return ret, nil
}

func sharedCount(a, b []string) int {
	count := 0
	for _, v := range a {
		if slices.Contains(b, v) {
			count++
		}
	}
	return count
}

// Related lists products in the same category sharing at least one application,
// most shared applications first.
func (i *Index) Related(id types.ProductId, limit int) ([]*types.Product, error) {
	item, ok := i.Get(id)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, errx.ErrNotFound)
	}
	categories := item.CategoryNames()
	applications := item.ApplicationNames()

	type scored struct {
		item  *types.Product
		score int
	}
	hits := make([]scored, 0)
	for _, other := range i.snapshot() {
		if other.Id == id || sharedCount(categories, other.CategoryNames()) == 0 {
			continue
		}
		if shared := sharedCount(applications, other.ApplicationNames()); shared > 0 {
			hits = append(hits, scored{item: other, score: shared})
		}
	}
	slices.SortStableFunc(hits, func(a, b scored) int {
		if a.score != b.score {
			return b.score - a.score
		}
		return cmp.Compare(a.item.Id, b.item.Id)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	ret := make([]*types.Product, 0, len(hits))
	for _, h := range hits {
		ret = append(ret, h.item)
	}
	return ret, nil
}

package table

import (
	"slices"

	"github.com/matst80/slask-parts/pkg/errx"
	"github.com/matst80/slask-parts/pkg/types"
)

// Selection is the set of selected rows in the order they were selected.
// The detail sheet shows the first one.
type Selection struct {
	ids []types.ProductId
}

func (s *Selection) Toggle(id types.ProductId) bool {
	if idx := slices.Index(s.ids, id); idx != -1 {
		s.ids = slices.Delete(s.ids, idx, idx+1)
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

func (s *Selection) Has(id types.ProductId) bool {
	return slices.Contains(s.ids, id)
}

func (s *Selection) Clear() {
	s.ids = nil
}

func (s *Selection) First() (types.ProductId, bool) {
	if len(s.ids) == 0 {
		return 0, false
	}
	return s.ids[0], true
}

func (s *Selection) Ids() []types.ProductId {
	return slices.Clone(s.ids)
}

func (s *Selection) Len() int {
	return len(s.ids)
}

const MaxCompareItems = 4

type CompareList struct {
	Ids []types.ProductId `json:"ids"`
}

func (c *CompareList) Add(id types.ProductId) error {
	if c.Has(id) {
		return nil
	}
	if len(c.Ids) >= MaxCompareItems {
		return errx.ErrCompareFull
	}
	c.Ids = append(c.Ids, id)
	return nil
}

func (c *CompareList) Remove(id types.ProductId) bool {
	idx := slices.Index(c.Ids, id)
	if idx == -1 {
		return false
	}
	c.Ids = slices.Delete(c.Ids, idx, idx+1)
	return true
}

func (c *CompareList) Has(id types.ProductId) bool {
	return slices.Contains(c.Ids, id)
}

func (c *CompareList) Clear() {
	c.Ids = []types.ProductId{}
}

func (c *CompareList) Len() int {
	return len(c.Ids)
}

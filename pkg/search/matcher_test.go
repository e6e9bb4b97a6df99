package search

import (
	"testing"

	"github.com/matst80/slask-parts/pkg/types"
	"github.com/stretchr/testify/assert"
)

func matcherItems() []*types.Product {
	return []*types.Product{
		{Id: 1, Name: "Automotive LED driver", PartNumber: "TPS92682-Q1", Manufacturer: &types.Manufacturer{Name: "Texas Instruments"}},
		{Id: 2, Name: "Matrix driver", Subtitle: "16 channel", Description: "Constant current sink"},
		{Id: 3, Name: "Schottky diode", PartNumber: "BAT54"},
	}
}

func TestEmptyQueryKeepsItems(t *testing.T) {
	m := NewMatcher()
	items := matcherItems()
	for _, q := range []string{"", "   ", "\t"} {
		got := m.Filter(items, q)
		assert.Equal(t, items, got)
		for _, item := range items {
			assert.True(t, m.Match(item, q))
		}
	}
}

func TestMatcherFields(t *testing.T) {
	m := NewMatcher()
	items := matcherItems()
	cases := []struct {
		query    string
		expected []types.ProductId
	}{
		{"driver", []types.ProductId{1, 2}},
		{"DRIVER", []types.ProductId{1, 2}},
		{"tps92682", []types.ProductId{1}},
		{"instruments", []types.ProductId{1}},
		{"16 channel", []types.ProductId{2}},
		{"current sink", []types.ProductId{2}},
		{"bat", []types.ProductId{3}},
		{"mosfet", []types.ProductId{}},
	}
	for _, tc := range cases {
		got := m.Filter(items, tc.query)
		ids := make([]types.ProductId, 0, len(got))
		for _, item := range got {
			ids = append(ids, item.Id)
		}
		assert.Equal(t, tc.expected, ids, "query %q", tc.query)
	}
}

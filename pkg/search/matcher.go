package search

import (
	"strings"

	"github.com/matst80/slask-parts/pkg/types"
)

type FieldFunc func(*types.Product) string

// Matcher does a case insensitive substring search over a fixed set of product fields.
type Matcher struct {
	Fields []FieldFunc
}

func NewMatcher() *Matcher {
	return &Matcher{
		Fields: []FieldFunc{
			func(p *types.Product) string { return p.Name },
			func(p *types.Product) string { return p.Subtitle },
			func(p *types.Product) string { return p.Description },
			func(p *types.Product) string { return p.PartNumber },
			func(p *types.Product) string { return p.GetManufacturerName() },
		},
	}
}

func (m *Matcher) Match(item *types.Product, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return m.matchLower(item, strings.ToLower(query))
}

func (m *Matcher) matchLower(item *types.Product, query string) bool {
	for _, field := range m.Fields {
		if v := field(item); v != "" && strings.Contains(strings.ToLower(v), query) {
			return true
		}
	}
	return false
}

// Filter keeps the order of items. A blank query returns items as is.
func (m *Matcher) Filter(items []*types.Product, query string) []*types.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	query = strings.ToLower(query)
	ret := make([]*types.Product, 0, len(items))
	for _, item := range items {
		if m.matchLower(item, query) {
			ret = append(ret, item)
		}
	}
	return ret
}

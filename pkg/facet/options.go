package facet

import (
	"cmp"
	"slices"

	"github.com/matst80/slask-parts/pkg/types"
)

type Option struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type JsonFacet struct {
	*Definition
	Selected *types.FilterValue `json:"selected,omitempty"`
	Options  []Option           `json:"options,omitempty"`
	Range    *types.NumberRange `json:"range,omitempty"`
	Count    int                `json:"count"`
}

func (f *JsonFacet) HasValues() bool {
	return len(f.Options) > 0 || f.Range != nil
}

type facetCounter struct {
	def    *Definition
	values map[string]int
	rng    *types.NumberRange
	count  int
}

func (c *facetCounter) add(e *Engine, item *types.Product) {
	switch c.def.Kind {
	case SingleSelect, MultiSelect:
		found := false
		for _, v := range c.def.Values(item) {
			if v == "" {
				continue
			}
			c.values[v]++
			found = true
		}
		if found {
			c.count++
		}
	case Text:
		if v := c.def.Text(item); v != "" {
			c.values[v]++
			c.count++
		}
	case Boolean:
		if flag, ok := c.def.Bool(item); ok {
			c.values[e.Labels.For(flag)]++
			c.count++
		}
	case NumericRange:
		r, ok := c.def.Range(item)
		if !ok {
			return
		}
		c.count++
		if c.rng == nil {
			c.rng = &types.NumberRange{Min: r.Min, Max: r.Max}
			return
		}
		c.rng.Min = min(c.rng.Min, r.Min)
		c.rng.Max = max(c.rng.Max, r.Max)
	}
}

func (c *facetCounter) result(e *Engine, state types.FilterState) *JsonFacet {
	ret := &JsonFacet{
		Definition: c.def,
		Count:      c.count,
	}
	if state.HasField(c.def.Key) {
		selected := state[c.def.Key]
		ret.Selected = &selected
	}
	if c.def.Kind == NumericRange {
		ret.Range = c.rng
		if ret.Range == nil && c.def.Bounds != nil {
			bounds := *c.def.Bounds
			ret.Range = &bounds
		}
		return ret
	}
	static := c.def.Static
	if c.def.Kind == Boolean && len(static) == 0 {
		static = []string{e.Labels.True, e.Labels.False}
	}
	for _, v := range static {
		if _, found := c.values[v]; !found {
			c.values[v] = 0
		}
	}
	ret.Options = make([]Option, 0, len(c.values))
	for v, count := range c.values {
		ret.Options = append(ret.Options, Option{Value: v, Count: count})
	}
	slices.SortFunc(ret.Options, func(a, b Option) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return ret
}

// Options derives the option list of every visible facet. With CountCrossFiltered an item
// is counted for a facet when it matches every other active facet, so the counts tell what
// picking an option would add. CountGlobal counts over all items.
func (e *Engine) Options(items []*types.Product, state types.FilterState, mode CountMode) []*JsonFacet {
	definitions := e.Definitions()
	counters := make(map[types.FacetKey]*facetCounter, len(definitions))
	for _, def := range definitions {
		if def.Hide {
			continue
		}
		counters[def.Key] = &facetCounter{def: def, values: make(map[string]int)}
	}

	active := make([]types.FacetKey, 0, len(state))
	for _, key := range state.Active() {
		if _, known := e.definitions[key]; known {
			active = append(active, key)
		}
	}

	for _, item := range items {
		if mode == CountGlobal || len(active) == 0 {
			for _, c := range counters {
				c.add(e, item)
			}
			continue
		}
		failed := types.FacetKey("")
		failures := 0
		for _, key := range active {
			if !e.match(e.definitions[key], item, state[key]) {
				failures++
				failed = key
				if failures > 1 {
					break
				}
			}
		}
		switch failures {
		case 0:
			for _, c := range counters {
				c.add(e, item)
			}
		case 1:
			if c, ok := counters[failed]; ok {
				c.add(e, item)
			}
		}
	}

	ret := make([]*JsonFacet, 0, len(counters))
	for _, def := range definitions {
		c, ok := counters[def.Key]
		if !ok {
			continue
		}
		if res := c.result(e, state); res.HasValues() {
			ret = append(ret, res)
		}
	}
	return ret
}

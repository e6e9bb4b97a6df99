package facet

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matst80/slask-parts/pkg/logx"
	"github.com/matst80/slask-parts/pkg/types"
)

// Engine holds the facet definitions and evaluates filter state against products.
// Register is not safe for concurrent use, everything else only reads.
type Engine struct {
	definitions map[types.FacetKey]*Definition
	order       []types.FacetKey
	aliases     map[string]types.FacetKey
	Labels      BoolLabels
	RangeMode   RangeMode
}

func NewEngine(labels BoolLabels, mode RangeMode) *Engine {
	return &Engine{
		definitions: make(map[types.FacetKey]*Definition),
		order:       make([]types.FacetKey, 0),
		aliases:     make(map[string]types.FacetKey),
		Labels:      labels,
		RangeMode:   mode,
	}
}

// NewDefaultEngine registers the catalog facets from DefaultDefinitions.
func NewDefaultEngine(labels BoolLabels, mode RangeMode) *Engine {
	e := NewEngine(labels, mode)
	for _, def := range DefaultDefinitions() {
		if err := e.Register(def); err != nil {
			panic(err)
		}
	}
	return e
}

func (e *Engine) Register(def *Definition) error {
	if def == nil || def.Key == "" {
		return fmt.Errorf("facet definition without key")
	}
	if !def.valid() {
		return fmt.Errorf("facet %s: missing accessor for kind %s", def.Key, def.Kind)
	}
	if _, found := e.definitions[def.Key]; found {
		return fmt.Errorf("facet %s already registered", def.Key)
	}
	for _, alias := range def.Aliases {
		if owner, found := e.aliases[alias]; found {
			return fmt.Errorf("facet %s: alias %s already used by %s", def.Key, alias, owner)
		}
	}
	e.definitions[def.Key] = def
	e.order = append(e.order, def.Key)
	for _, alias := range def.Aliases {
		e.aliases[alias] = def.Key
	}
	return nil
}

// Resolve maps a query parameter, either a facet key or one of its aliases, to the facet key.
func (e *Engine) Resolve(param string) (types.FacetKey, bool, bool) {
	key := types.FacetKey(param)
	def, ok := e.definitions[key]
	if !ok {
		if key, ok = e.aliases[param]; !ok {
			return "", false, false
		}
		def = e.definitions[key]
	}
	return def.Key, def.Kind == NumericRange, true
}

func (e *Engine) Definition(key types.FacetKey) (*Definition, bool) {
	def, ok := e.definitions[key]
	return def, ok
}

// Definitions in priority order, registration order breaks ties.
func (e *Engine) Definitions() []*Definition {
	ret := make([]*Definition, 0, len(e.order))
	for _, key := range e.order {
		ret = append(ret, e.definitions[key])
	}
	slices.SortStableFunc(ret, func(a, b *Definition) int {
		return b.Priority - a.Priority
	})
	return ret
}

// Match evaluates a single facet. Empty values and unknown keys never filter.
func (e *Engine) Match(item *types.Product, key types.FacetKey, value types.FilterValue) bool {
	if value.IsEmpty() {
		return true
	}
	def, ok := e.definitions[key]
	if !ok {
		return true
	}
	return e.match(def, item, value)
}

func (e *Engine) match(def *Definition, item *types.Product, value types.FilterValue) bool {
	switch def.Kind {
	case SingleSelect, MultiSelect:
		active := activeValues(value)
		if len(active) == 0 {
			return true
		}
		for _, v := range def.Values(item) {
			if slices.Contains(active, v) {
				return true
			}
		}
		return false
	case Text:
		active := activeValues(value)
		if len(active) == 0 {
			return true
		}
		text := strings.ToLower(def.Text(item))
		if text == "" {
			return false
		}
		for _, v := range active {
			if strings.Contains(text, strings.ToLower(v)) {
				return true
			}
		}
		return false
	case NumericRange:
		bounds, ok := rangeOf(value)
		if !ok {
			return true
		}
		itemRange, ok := def.Range(item)
		if !ok {
			return false
		}
		if e.RangeMode == Overlap {
			return bounds.Overlaps(itemRange)
		}
		return bounds.Contains(itemRange)
	case Boolean:
		active := activeValues(value)
		if len(active) == 0 {
			return true
		}
		flag, ok := def.Bool(item)
		if !ok {
			return false
		}
		for _, v := range active {
			if parsed, ok := e.Labels.Parse(v); ok && parsed == flag {
				return true
			}
		}
		return false
	}
	logx.Warn().Str("facet", string(def.Key)).Stringer("kind", def.Kind).Msg("unhandled facet kind")
	return false
}

// MatchAll is the conjunction of every active facet in state.
func (e *Engine) MatchAll(item *types.Product, state types.FilterState) bool {
	for key, value := range state {
		if !e.Match(item, key, value) {
			return false
		}
	}
	return true
}

// Filter returns the items matching state, keeping their order.
func (e *Engine) Filter(items []*types.Product, state types.FilterState) []*types.Product {
	ret := make([]*types.Product, 0, len(items))
	for _, item := range items {
		if e.MatchAll(item, state) {
			ret = append(ret, item)
		}
	}
	return ret
}

func activeValues(value types.FilterValue) []string {
	ret := make([]string, 0, len(value.Values))
	for _, v := range value.Values {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}

// rangeOf falls back to parsing the string values when no range was decoded.
func rangeOf(value types.FilterValue) (types.NumberRange, bool) {
	if value.Range != nil {
		return *value.Range, true
	}
	if len(value.Values) == 0 {
		return types.NumberRange{}, false
	}
	rng, err := types.ParseRange(strings.Join(value.Values, types.ArrayDelimiter))
	if err != nil {
		return types.NumberRange{}, false
	}
	return rng, true
}

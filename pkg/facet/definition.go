package facet

import (
	"github.com/matst80/slask-parts/pkg/types"
)

type ValueFunc func(*types.Product) []string
type RangeFunc func(*types.Product) (types.NumberRange, bool)
type BoolFunc func(*types.Product) (bool, bool)
type TextFunc func(*types.Product) string

// Definition describes one filterable attribute and how to read it from a product.
// Only the accessor matching Kind is used.
type Definition struct {
	Key      types.FacetKey     `json:"key"`
	Label    string             `json:"label"`
	Kind     Kind               `json:"kind"`
	Aliases  []string           `json:"-"`
	Priority int                `json:"prio"`
	Unit     string             `json:"unit,omitempty"`
	Hide     bool               `json:"hide,omitempty"`
	Static   []string           `json:"-"`
	Bounds   *types.NumberRange `json:"bounds,omitempty"`

	Values ValueFunc `json:"-"`
	Range  RangeFunc `json:"-"`
	Bool   BoolFunc  `json:"-"`
	Text   TextFunc  `json:"-"`
}

func SelectFacet(key types.FacetKey, label string, multi bool, fn ValueFunc) *Definition {
	kind := SingleSelect
	if multi {
		kind = MultiSelect
	}
	return &Definition{Key: key, Label: label, Kind: kind, Values: fn}
}

func RangeFacet(key types.FacetKey, label string, unit string, fn RangeFunc) *Definition {
	return &Definition{Key: key, Label: label, Kind: NumericRange, Unit: unit, Range: fn}
}

func BoolFacet(key types.FacetKey, label string, fn BoolFunc) *Definition {
	return &Definition{Key: key, Label: label, Kind: Boolean, Bool: fn}
}

func TextFacet(key types.FacetKey, label string, fn TextFunc) *Definition {
	return &Definition{Key: key, Label: label, Kind: Text, Text: fn}
}

func (d *Definition) WithAliases(aliases ...string) *Definition {
	d.Aliases = append(d.Aliases, aliases...)
	return d
}

func (d *Definition) WithStatic(values ...string) *Definition {
	d.Static = values
	return d
}

func (d *Definition) WithBounds(lo, hi float64) *Definition {
	d.Bounds = &types.NumberRange{Min: lo, Max: hi}
	return d
}

func (d *Definition) WithPriority(prio int) *Definition {
	d.Priority = prio
	return d
}

func (d *Definition) valid() bool {
	switch d.Kind {
	case SingleSelect, MultiSelect:
		return d.Values != nil
	case NumericRange:
		return d.Range != nil
	case Boolean:
		return d.Bool != nil
	case Text:
		return d.Text != nil
	}
	return false
}

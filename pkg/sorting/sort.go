package sorting

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matst80/slask-parts/pkg/types"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Direction uint8

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

const DefaultField = "name"

type FieldValue func(*types.Product) string

// Fields maps a sort field to the string it is compared on. Missing values compare as "".
var Fields = map[string]FieldValue{
	"name": func(p *types.Product) string {
		return p.Name
	},
	"manufacturer": func(p *types.Product) string {
		return p.GetManufacturerName()
	},
	"category": func(p *types.Product) string {
		return p.Category.Name
	},
	"partNumber": func(p *types.Product) string {
		return p.PartNumber
	},
	"updated": func(p *types.Product) string {
		// zero padded so digits collate in numeric order
		return fmt.Sprintf("%020d", p.LastUpdate)
	},
}

var fieldAliases = map[string]string{
	"part_number":       "partNumber",
	"manufacturer_name": "manufacturer",
	"lastUpdate":        "updated",
	"updated_at":        "updated",
}

type Sort struct {
	Field     string
	Direction Direction
}

func (s Sort) String() string {
	return s.Field + ":" + s.Direction.String()
}

// ParseSort reads "field:direction" or "field.direction". Unknown fields fall back to name,
// anything but desc is ascending. An empty string means no sorting.
func ParseSort(value string) (Sort, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Sort{}, false
	}
	field, direction, found := strings.Cut(value, ":")
	if !found {
		if idx := strings.LastIndex(value, "."); idx > 0 {
			field, direction = value[:idx], value[idx+1:]
		}
	}
	if alias, ok := fieldAliases[field]; ok {
		field = alias
	}
	if _, ok := Fields[field]; !ok {
		field = DefaultField
	}
	ret := Sort{Field: field, Direction: Ascending}
	if strings.EqualFold(direction, "desc") {
		ret.Direction = Descending
	}
	return ret, true
}

type Sorter struct {
	tag language.Tag
}

func NewSorter(locale string) *Sorter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Sorter{tag: tag}
}

// Comparator builds a locale aware compare function. A collator keeps internal buffers so
// the returned func must not be shared between goroutines.
func (s *Sorter) Comparator(sort Sort) func(a, b *types.Product) int {
	collator := collate.New(s.tag)
	value := Fields[sort.Field]
	if value == nil {
		value = Fields[DefaultField]
	}
	if sort.Direction == Descending {
		return func(a, b *types.Product) int {
			return collator.CompareString(value(b), value(a))
		}
	}
	return func(a, b *types.Product) int {
		return collator.CompareString(value(a), value(b))
	}
}

// SortProducts returns a stably sorted copy. Without a sort the input is returned as is.
func (s *Sorter) SortProducts(items []*types.Product, sortValue string) []*types.Product {
	sort, ok := ParseSort(sortValue)
	if !ok {
		return items
	}
	ret := slices.Clone(items)
	slices.SortStableFunc(ret, s.Comparator(sort))
	return ret
}

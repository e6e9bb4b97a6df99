package facet

import (
	"fmt"
	"strings"

	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
)

// Kind decides which predicate a facet uses. The set is closed, see Engine.Match.
type Kind uint8

const (
	Text Kind = iota + 1
	SingleSelect
	MultiSelect
	NumericRange
	Boolean
)

var kindNames = map[Kind]string{
	Text:         "text",
	SingleSelect: "single",
	MultiSelect:  "multi",
	NumericRange: "range",
	Boolean:      "boolean",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", k)
}

func (k Kind) IsSelect() bool {
	return k == SingleSelect || k == MultiSelect
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return jsoncompat.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := jsoncompat.Unmarshal(data, &name); err != nil {
		return err
	}
	for kind, n := range kindNames {
		if strings.EqualFold(n, name) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown facet kind %q", name)
}

type RangeMode uint8

const (
	// Containment requires the item range to lie fully inside the filter bounds.
	Containment RangeMode = iota
	Overlap
)

func ParseRangeMode(s string) RangeMode {
	if strings.EqualFold(s, "overlap") {
		return Overlap
	}
	return Containment
}

type CountMode uint8

const (
	// CountCrossFiltered counts each facet over items matching every other active facet.
	CountCrossFiltered CountMode = iota
	CountGlobal
)

func ParseCountMode(s string) CountMode {
	if strings.EqualFold(s, "global") {
		return CountGlobal
	}
	return CountCrossFiltered
}

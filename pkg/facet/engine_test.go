package facet

import (
	"net/url"
	"testing"

	"github.com/matst80/slask-parts/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v float64) *float64 {
	return &v
}

func flag(v bool) *bool {
	return &v
}

func between(lo, hi float64) *types.Range {
	return &types.Range{Min: num(lo), Max: num(hi)}
}

func product(id types.ProductId, category string, manufacturer string, apps ...string) *types.Product {
	p := &types.Product{
		Id:           id,
		Name:         "part-" + category,
		Category:     types.Category{Id: uint(id), Name: category},
		Manufacturer: &types.Manufacturer{Id: 1, Name: manufacturer},
	}
	for i, a := range apps {
		p.Applications = append(p.Applications, types.Application{Id: uint(i + 1), Name: a})
	}
	return p
}

func testItems() []*types.Product {
	one := product(1, "led-driver", "Acme", "automotive")
	one.Specification.LEDDriverIC = &types.LEDDriverICSpec{
		Channels:             "16",
		InputVoltage:         between(4.5, 40),
		OperatingTemperature: between(-40, 125),
		ThermalPad:           flag(true),
		Topology:             []string{"Buck"},
		DimmingMethod:        []string{"PWM"},
	}
	two := product(2, "led-driver", "Acme", "lighting")
	two.Specification.LEDDriverIC = &types.LEDDriverICSpec{
		Channels:      "3x4",
		InputVoltage:  between(3, 5.5),
		ThermalPad:    flag(false),
		Topology:      []string{"Boost"},
		DimmingMethod: []string{"PWM", "Analog"},
	}
	three := product(3, "diode", "Diodes Inc", "automotive")
	three.Specification.Diode = &types.DiodeSpec{
		DiodeType:      "Schottky",
		ForwardVoltage: between(0.7, 1.1),
	}
	four := product(4, "led-driver", "Bright", "automotive", "lighting")
	four.Specification.LEDDriverIC = &types.LEDDriverICSpec{
		Channels:             "4",
		InputVoltage:         between(8, 60),
		OperatingTemperature: &types.Range{Min: num(-20)},
	}
	return []*types.Product{one, two, three, four}
}

func ids(items []*types.Product) []types.ProductId {
	ret := make([]types.ProductId, 0, len(items))
	for _, item := range items {
		ret = append(ret, item.Id)
	}
	return ret
}

func TestInactiveFacetMatchesEverything(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Containment)
	inactive := []types.FilterValue{
		{},
		types.Values(),
		types.Values("", "  "),
	}
	for _, item := range testItems() {
		for _, def := range e.Definitions() {
			for _, v := range inactive {
				assert.True(t, e.Match(item, def.Key, v), "facet %s item %d", def.Key, item.Id)
			}
		}
		assert.True(t, e.Match(item, "no-such-facet", types.Values("x")))
	}
}

func TestSelectFacetIntersects(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Containment)
	cases := []struct {
		key      types.FacetKey
		value    types.FilterValue
		expected []types.ProductId
	}{
		{"applications", types.Values("automotive"), []types.ProductId{1, 3, 4}},
		{"applications", types.Values("lighting", "industrial"), []types.ProductId{2, 4}},
		{"applications", types.Values("industrial"), []types.ProductId{}},
		{"manufacturers", types.Values("Acme", "Bright"), []types.ProductId{1, 2, 4}},
		{"topologies", types.Values("Boost", "Buck"), []types.ProductId{1, 2}},
		{"dimmingMethods", types.Values("Analog"), []types.ProductId{2}},
		{"diodeTypes", types.Values("Schottky"), []types.ProductId{3}},
	}
	for _, tc := range cases {
		got := e.Filter(testItems(), types.FilterState{tc.key: tc.value})
		assert.Equal(t, tc.expected, ids(got), "facet %s %v", tc.key, tc.value.Values)
	}
}

func TestRangeFacetRequiresContainment(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Containment)
	items := testItems()

	got := e.Filter(items, types.FilterState{"inputVoltage": types.Between(0, 45)})
	assert.Equal(t, []types.ProductId{1, 2}, ids(got))

	// item 1 spans 4.5-40 and only overlaps 10-50
	got = e.Filter(items, types.FilterState{"inputVoltage": types.Between(10, 50)})
	assert.Empty(t, got)

	assert.False(t, e.Match(items[2], "inputVoltage", types.Between(0, 100)), "diode has no input voltage")
}

func TestRangeFacetOverlapMode(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Overlap)
	got := e.Filter(testItems(), types.FilterState{"inputVoltage": types.Between(10, 50)})
	assert.Equal(t, []types.ProductId{1, 4}, ids(got))
}

func TestRangeFacetParsesStringValues(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Containment)
	items := testItems()
	assert.True(t, e.Match(items[1], "inputVoltage", types.Values("3", "6")))
	assert.True(t, e.Match(items[1], "inputVoltage", types.Values("nonsense")), "unparsable range is inactive")
}

func TestTemperatureDefaults(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Containment)
	four := testItems()[3]
	assert.False(t, e.Match(four, "operatingTemperature", types.Between(-40, 100)))
	assert.True(t, e.Match(four, "operatingTemperature", types.Between(-40, 125)))
	assert.True(t, e.Match(four, "operatingTemperature", types.Between(-20, 125)))
}

func TestBooleanFacetUsesLabels(t *testing.T) {
	items := testItems()
	ko := NewDefaultEngine(KoreanLabels, Containment)
	assert.True(t, ko.Match(items[0], "thermalPad", types.Values("있음")))
	assert.False(t, ko.Match(items[0], "thermalPad", types.Values("없음")))
	assert.True(t, ko.Match(items[1], "thermalPad", types.Values("없음")))
	assert.True(t, ko.Match(items[1], "thermalPad", types.Values("있음", "없음")))
	assert.False(t, ko.Match(items[3], "thermalPad", types.Values("있음", "없음")), "missing flag never matches")

	en := NewDefaultEngine(EnglishLabels, Containment)
	assert.True(t, en.Match(items[0], "thermalPad", types.Values("Yes")))
	assert.True(t, en.Match(items[0], "thermalPad", types.Values("true")))
	assert.False(t, en.Match(items[0], "thermalPad", types.Values("No")))
}

func TestTextFacetContains(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Containment)
	got := e.Filter(testItems(), types.FilterState{"channels": types.Values("4")})
	assert.Equal(t, []types.ProductId{2, 4}, ids(got))

	got = e.Filter(testItems(), types.FilterState{"channels": types.Values("3X")})
	assert.Equal(t, []types.ProductId{2}, ids(got))
}

func TestMatchAllIsConjunction(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Containment)
	items := testItems()
	a := types.FilterState{"categories": types.Values("led-driver")}
	b := types.FilterState{"applications": types.Values("automotive")}
	both := types.FilterState{
		"categories":   types.Values("led-driver"),
		"applications": types.Values("automotive"),
	}

	inA := ids(e.Filter(items, a))
	inB := ids(e.Filter(items, b))
	expected := make([]types.ProductId, 0)
	for _, id := range inA {
		for _, other := range inB {
			if id == other {
				expected = append(expected, id)
			}
		}
	}
	assert.Equal(t, expected, ids(e.Filter(items, both)))
	assert.Equal(t, []types.ProductId{1, 4}, expected)
}

func TestCategoryAndApplicationFromQuery(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Containment)
	items := []*types.Product{
		product(1, "led-driver", "Acme", "automotive"),
		product(2, "led-driver", "Acme", "lighting"),
		product(3, "diode", "Acme", "automotive"),
	}
	state, warnings := types.ParseFilterState(url.Values{
		"category":    {"led-driver"},
		"application": {"automotive"},
	}, e)
	require.Empty(t, warnings)
	assert.Equal(t, []types.ProductId{1}, ids(e.Filter(items, state)))
}

func TestResolve(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Containment)

	key, isRange, ok := e.Resolve("category")
	assert.True(t, ok)
	assert.False(t, isRange)
	assert.Equal(t, types.FacetKey("categories"), key)

	key, isRange, ok = e.Resolve("inputVoltage")
	assert.True(t, ok)
	assert.True(t, isRange)
	assert.Equal(t, types.FacetKey("inputVoltage"), key)

	_, _, ok = e.Resolve("unknown")
	assert.False(t, ok)
}

func TestRegisterRejectsConflicts(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Containment)
	values := func(p *types.Product) []string { return nil }

	assert.Error(t, e.Register(SelectFacet("categories", "dup", true, values)))
	assert.Error(t, e.Register(SelectFacet("other", "alias", true, values).WithAliases("category")))
	assert.Error(t, e.Register(&Definition{Key: "broken", Kind: NumericRange}))
	assert.NoError(t, e.Register(SelectFacet("series", "Series", false, values)))
}

func TestDefinitionsOrderedByPriority(t *testing.T) {
	e := NewDefaultEngine(EnglishLabels, Containment)
	defs := e.Definitions()
	require.Greater(t, len(defs), 3)
	assert.Equal(t, types.FacetKey("categories"), defs[0].Key)
	assert.Equal(t, types.FacetKey("manufacturers"), defs[1].Key)
	assert.Equal(t, types.FacetKey("applications"), defs[2].Key)
}

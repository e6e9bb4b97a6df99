package table

import (
	"maps"
	"slices"
)

const MinColumnWidth = 40

type Column struct {
	Id     string `json:"id"`
	Label  string `json:"label"`
	Width  int    `json:"width,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

var ProductColumns = []Column{
	{Id: "select", Label: "", Width: 40},
	{Id: "partNumber", Label: "Part number", Width: 160},
	{Id: "name", Label: "Name", Width: 220},
	{Id: "manufacturer", Label: "Manufacturer", Width: 140},
	{Id: "category", Label: "Category", Width: 140},
	{Id: "channels", Label: "Channels", Width: 90},
	{Id: "inputVoltage", Label: "Input voltage", Width: 120},
	{Id: "outputVoltage", Label: "Output voltage", Width: 120, Hidden: true},
	{Id: "outputCurrent", Label: "Output current", Width: 120},
	{Id: "switchingFrequency", Label: "Switching frequency", Width: 140, Hidden: true},
	{Id: "operatingTemperature", Label: "Operating temperature", Width: 160, Hidden: true},
	{Id: "packageType", Label: "Package", Width: 120},
	{Id: "mountingType", Label: "Mounting", Width: 120, Hidden: true},
	{Id: "topology", Label: "Topology", Width: 120, Hidden: true},
	{Id: "dimmingMethod", Label: "Dimming", Width: 120, Hidden: true},
	{Id: "stock", Label: "Stock", Width: 100},
}

// ColumnPreferences are the persisted user choices, applied on top of the default columns.
type ColumnPreferences struct {
	Visibility map[string]bool `json:"visibility,omitempty"`
	Order      []string        `json:"order,omitempty"`
	Widths     map[string]int  `json:"widths,omitempty"`
}

func (c *ColumnPreferences) Clone() ColumnPreferences {
	return ColumnPreferences{
		Visibility: maps.Clone(c.Visibility),
		Order:      slices.Clone(c.Order),
		Widths:     maps.Clone(c.Widths),
	}
}

func (c *ColumnPreferences) visible(col Column) bool {
	if v, ok := c.Visibility[col.Id]; ok {
		return v
	}
	return !col.Hidden
}

// ordered lists every default column, preferred order first. Unknown ids are dropped and
// columns missing from the order keep their default position at the end.
func (c *ColumnPreferences) ordered(defaults []Column) []Column {
	byId := make(map[string]Column, len(defaults))
	for _, col := range defaults {
		byId[col.Id] = col
	}
	ret := make([]Column, 0, len(defaults))
	seen := make(map[string]struct{}, len(defaults))
	for _, id := range c.Order {
		col, ok := byId[id]
		if _, done := seen[id]; !ok || done {
			continue
		}
		seen[id] = struct{}{}
		ret = append(ret, col)
	}
	for _, col := range defaults {
		if _, done := seen[col.Id]; !done {
			ret = append(ret, col)
		}
	}
	return ret
}

// Apply returns the visible columns in display order with preferred widths.
func (c *ColumnPreferences) Apply(defaults []Column) []Column {
	ret := make([]Column, 0, len(defaults))
	for _, col := range c.ordered(defaults) {
		if !c.visible(col) {
			continue
		}
		if w, ok := c.Widths[col.Id]; ok {
			col.Width = w
		}
		col.Hidden = false
		ret = append(ret, col)
	}
	return ret
}

// Move places id at position to in the full column order.
func (c *ColumnPreferences) Move(defaults []Column, id string, to int) bool {
	order := c.ordered(defaults)
	from := slices.IndexFunc(order, func(col Column) bool {
		return col.Id == id
	})
	if from == -1 {
		return false
	}
	to = max(0, min(to, len(order)-1))
	col := order[from]
	order = slices.Delete(order, from, from+1)
	order = slices.Insert(order, to, col)
	c.Order = make([]string, 0, len(order))
	for _, col := range order {
		c.Order = append(c.Order, col.Id)
	}
	return true
}

// Toggle flips the visibility of id and returns the new state.
func (c *ColumnPreferences) Toggle(defaults []Column, id string) (bool, bool) {
	idx := slices.IndexFunc(defaults, func(col Column) bool {
		return col.Id == id
	})
	if idx == -1 {
		return false, false
	}
	if c.Visibility == nil {
		c.Visibility = make(map[string]bool)
	}
	visible := !c.visible(defaults[idx])
	c.Visibility[id] = visible
	return visible, true
}

func (c *ColumnPreferences) Resize(id string, width int) {
	if c.Widths == nil {
		c.Widths = make(map[string]int)
	}
	c.Widths[id] = max(width, MinColumnWidth)
}

package facet

import (
	"github.com/matst80/slask-parts/pkg/types"
)

const (
	// missing temperature ends are read as the common industrial grade
	DefaultTemperatureMin = -40
	DefaultTemperatureMax = 125
)

func ledSpec(p *types.Product) *types.LEDDriverICSpec {
	return p.Specification.LEDDriverIC
}

func ledRange(get func(*types.LEDDriverICSpec) *types.Range) RangeFunc {
	return func(p *types.Product) (types.NumberRange, bool) {
		spec := ledSpec(p)
		if spec == nil {
			return types.NumberRange{}, false
		}
		return get(spec).Bounds(0, 0)
	}
}

func diodeRange(get func(*types.DiodeSpec) *types.Range) RangeFunc {
	return func(p *types.Product) (types.NumberRange, bool) {
		spec := p.Specification.Diode
		if spec == nil {
			return types.NumberRange{}, false
		}
		return get(spec).Bounds(0, 0)
	}
}

func ledBool(get func(*types.LEDDriverICSpec) *bool) BoolFunc {
	return func(p *types.Product) (bool, bool) {
		spec := ledSpec(p)
		if spec == nil {
			return false, false
		}
		v := get(spec)
		if v == nil {
			return false, false
		}
		return *v, true
	}
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// DefaultDefinitions are the facets of the component catalog.
func DefaultDefinitions() []*Definition {
	return []*Definition{
		SelectFacet("categories", "Category", true, func(p *types.Product) []string {
			return p.CategoryNames()
		}).WithAliases("category").WithPriority(100),
		SelectFacet("manufacturers", "Manufacturer", true, func(p *types.Product) []string {
			return single(p.GetManufacturerName())
		}).WithAliases("manufacturer").WithPriority(90),
		SelectFacet("applications", "Application", true, func(p *types.Product) []string {
			return p.ApplicationNames()
		}).WithAliases("application").WithPriority(80),
		SelectFacet("certifications", "Certification", true, func(p *types.Product) []string {
			return p.CertificationNames()
		}).WithAliases("certification"),
		SelectFacet("features", "Features", true, func(p *types.Product) []string {
			return p.Features
		}).WithAliases("feature"),
		TextFacet("channels", "Channels", func(p *types.Product) string {
			if spec := ledSpec(p); spec != nil {
				return string(spec.Channels)
			}
			return ""
		}),
		RangeFacet("inputVoltage", "Input voltage", "V", ledRange(func(s *types.LEDDriverICSpec) *types.Range {
			return s.InputVoltage
		})),
		RangeFacet("outputVoltage", "Output voltage", "V", ledRange(func(s *types.LEDDriverICSpec) *types.Range {
			return s.OutputVoltage
		})),
		RangeFacet("outputCurrent", "Output current", "mA", ledRange(func(s *types.LEDDriverICSpec) *types.Range {
			return s.OutputCurrent
		})),
		RangeFacet("switchingFrequency", "Switching frequency", "kHz", ledRange(func(s *types.LEDDriverICSpec) *types.Range {
			return s.SwitchingFrequency
		})),
		RangeFacet("operatingTemperature", "Operating temperature", "°C", func(p *types.Product) (types.NumberRange, bool) {
			return p.Specification.OperatingTemperature().Bounds(DefaultTemperatureMin, DefaultTemperatureMax)
		}).WithBounds(DefaultTemperatureMin, DefaultTemperatureMax),
		SelectFacet("packageTypes", "Package", true, func(p *types.Product) []string {
			return p.PackageTypes()
		}).WithAliases("packageType"),
		SelectFacet("mountingTypes", "Mounting", true, func(p *types.Product) []string {
			return p.MountingTypes()
		}).WithAliases("mountingType"),
		BoolFacet("internalSwitch", "Internal switch", ledBool(func(s *types.LEDDriverICSpec) *bool {
			return s.InternalSwitch
		})),
		BoolFacet("thermalPad", "Thermal pad", ledBool(func(s *types.LEDDriverICSpec) *bool {
			return s.ThermalPad
		})),
		SelectFacet("topologies", "Topology", true, func(p *types.Product) []string {
			if spec := ledSpec(p); spec != nil {
				return spec.Topology
			}
			return nil
		}).WithAliases("topology").WithStatic(types.Topologies...),
		SelectFacet("dimmingMethods", "Dimming", true, func(p *types.Product) []string {
			if spec := ledSpec(p); spec != nil {
				return spec.DimmingMethod
			}
			return nil
		}).WithAliases("dimmingMethod").WithStatic(types.DimmingMethods...),
		SelectFacet("diodeTypes", "Diode type", true, func(p *types.Product) []string {
			if spec := p.Specification.Diode; spec != nil {
				return single(spec.DiodeType)
			}
			return nil
		}).WithAliases("diodeType"),
		RangeFacet("forwardVoltage", "Forward voltage", "V", diodeRange(func(s *types.DiodeSpec) *types.Range {
			return s.ForwardVoltage
		})),
		RangeFacet("reverseVoltage", "Reverse voltage", "V", diodeRange(func(s *types.DiodeSpec) *types.Range {
			return s.ReverseVoltage
		})),
		SelectFacet("stock", "Stock", false, func(p *types.Product) []string {
			return single(string(p.Stock))
		}),
	}
}

package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
)

var ErrInvalidSpecification = errors.New("invalid specification")

func invalidProduct(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSpecification, reason)
}

type CategoryKind string

const (
	CategoryLEDDriverIC CategoryKind = "led-driver-ic"
	CategoryDiode       CategoryKind = "diode"
	CategoryGeneric     CategoryKind = "generic"
)

func ParseCategoryKind(s string) (CategoryKind, bool) {
	switch CategoryKind(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryLEDDriverIC, "leddriveric", "led-driver":
		return CategoryLEDDriverIC, true
	case CategoryDiode:
		return CategoryDiode, true
	case CategoryGeneric, "":
		return CategoryGeneric, true
	}
	return "", false
}

// Range is a measured quantity with optional min/typ/max and unit.
type Range struct {
	Min         *float64 `json:"min,omitempty"`
	Typ         *float64 `json:"typ,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Bounds fills missing ends with the given defaults. A nil range has no bounds.
func (r *Range) Bounds(defMin, defMax float64) (NumberRange, bool) {
	if r == nil {
		return NumberRange{}, false
	}
	ret := NumberRange{Min: defMin, Max: defMax}
	if r.Min != nil {
		ret.Min = *r.Min
	}
	if r.Max != nil {
		ret.Max = *r.Max
	}
	return ret, true
}

func (r *Range) validate(name string) error {
	if r == nil || r.Min == nil || r.Max == nil {
		return nil
	}
	if *r.Min > *r.Max {
		return fmt.Errorf("%w: %s min %g is greater than max %g", ErrInvalidSpecification, name, *r.Min, *r.Max)
	}
	return nil
}

// Channels is either a plain channel count or a layout like "3x4".
type Channels string

func (c *Channels) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*c = ""
		return nil
	}
	if strings.HasPrefix(s, "\"") {
		var str string
		if err := jsoncompat.Unmarshal(data, &str); err != nil {
			return err
		}
		*c = Channels(str)
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("channels: %w", err)
	}
	*c = Channels(s)
	return nil
}

func (c Channels) MarshalJSON() ([]byte, error) {
	if c == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(string(c), 64); err == nil {
		return []byte(c), nil
	}
	return jsoncompat.Marshal(string(c))
}

type CurrentAccuracy struct {
	BetweenIcs      *float64 `json:"between_ics,omitempty"`
	BetweenChannels *float64 `json:"between_channels,omitempty"`
}

type CommunicationInterface struct {
	Type        string   `json:"type,omitempty"`
	Speed       *float64 `json:"speed,omitempty"`
	Proprietary bool     `json:"proprietary,omitempty"`
	Description string   `json:"description,omitempty"`
}

type Pwm struct {
	Resolution  string   `json:"resolution,omitempty"`
	Frequency   *float64 `json:"frequency,omitempty"`
	Description string   `json:"description,omitempty"`
}

type LEDDriverICSpec struct {
	Channels                Channels                `json:"channels,omitempty"`
	InputVoltage            *Range                  `json:"input_voltage,omitempty"`
	OutputVoltage           *Range                  `json:"output_voltage,omitempty"`
	OutputCurrent           *Range                  `json:"output_current,omitempty"`
	CurrentAccuracy         *CurrentAccuracy        `json:"current_accuracy,omitempty"`
	OperatingTemperature    *Range                  `json:"operating_temperature,omitempty"`
	SwitchingFrequency      *Range                  `json:"switching_frequency,omitempty"`
	GrayScaleClockFrequency *Range                  `json:"gray_scale_clock_frequency,omitempty"`
	DataClockFrequency      *Range                  `json:"data_clock_frequency,omitempty"`
	PackageType             string                  `json:"package_type,omitempty"`
	SupplyPackage           string                  `json:"supply_package,omitempty"`
	PackageCase             string                  `json:"package_case,omitempty"`
	MountingType            string                  `json:"mounting_type,omitempty"`
	ThermalPad              *bool                   `json:"thermal_pad,omitempty"`
	InternalSwitch          *bool                   `json:"internal_switch,omitempty"`
	Topology                []string                `json:"topology,omitempty"`
	DimmingMethod           []string                `json:"dimming_method,omitempty"`
	CommunicationInterface  *CommunicationInterface `json:"communication_interface,omitempty"`
	Pwm                     *Pwm                    `json:"pwm,omitempty"`
}

var Topologies = []string{
	"Buck", "Boost", "Buck-Boost", "Charge Pump", "Linear Regulator", "Constant Current Sink",
	"SEPIC", "Flyback", "Forward", "Half-Bridge", "Full-Bridge", "Other",
}

var DimmingMethods = []string{"PWM", "Analog"}

func (s *LEDDriverICSpec) Validate() error {
	ranges := map[string]*Range{
		"input_voltage":              s.InputVoltage,
		"output_voltage":             s.OutputVoltage,
		"output_current":             s.OutputCurrent,
		"operating_temperature":      s.OperatingTemperature,
		"switching_frequency":        s.SwitchingFrequency,
		"gray_scale_clock_frequency": s.GrayScaleClockFrequency,
		"data_clock_frequency":       s.DataClockFrequency,
	}
	for name, r := range ranges {
		if err := r.validate(name); err != nil {
			return err
		}
	}
	return nil
}

type DiodeSpec struct {
	DiodeType            string `json:"diode_type,omitempty"`
	ForwardVoltage       *Range `json:"forward_voltage,omitempty"`
	ReverseVoltage       *Range `json:"reverse_voltage,omitempty"`
	ForwardCurrent       *Range `json:"forward_current,omitempty"`
	ReverseCurrent       *Range `json:"reverse_current,omitempty"`
	RecoveryTime         *Range `json:"recovery_time,omitempty"`
	BreakdownVoltage     *Range `json:"breakdown_voltage,omitempty"`
	ClampingVoltage      *Range `json:"clamping_voltage,omitempty"`
	ZenerVoltage         *Range `json:"zener_voltage,omitempty"`
	OperatingTemperature *Range `json:"operating_temperature,omitempty"`
	StorageTemperature   *Range `json:"storage_temperature,omitempty"`
	PackageType          string `json:"package_type,omitempty"`
	MountingType         string `json:"mounting_type,omitempty"`
}

func (s *DiodeSpec) Validate() error {
	ranges := map[string]*Range{
		"forward_voltage":       s.ForwardVoltage,
		"reverse_voltage":       s.ReverseVoltage,
		"forward_current":       s.ForwardCurrent,
		"reverse_current":       s.ReverseCurrent,
		"recovery_time":         s.RecoveryTime,
		"breakdown_voltage":     s.BreakdownVoltage,
		"clamping_voltage":      s.ClampingVoltage,
		"zener_voltage":         s.ZenerVoltage,
		"operating_temperature": s.OperatingTemperature,
		"storage_temperature":   s.StorageTemperature,
	}
	for name, r := range ranges {
		if err := r.validate(name); err != nil {
			return err
		}
	}
	return nil
}

type GenericSpec struct {
	PackageType  string         `json:"package_type,omitempty"`
	MountingType string         `json:"mounting_type,omitempty"`
	Attributes   map[string]any `json:"attributes,omitempty"`
}

func (s *GenericSpec) Validate() error {
	return nil
}

// Specification is a tagged union, at most one variant is set.
type Specification struct {
	LEDDriverIC *LEDDriverICSpec
	Diode       *DiodeSpec
	Generic     *GenericSpec
}

func (s Specification) Kind() CategoryKind {
	switch {
	case s.LEDDriverIC != nil:
		return CategoryLEDDriverIC
	case s.Diode != nil:
		return CategoryDiode
	case s.Generic != nil:
		return CategoryGeneric
	}
	return ""
}

func (s Specification) IsEmpty() bool {
	return s.Kind() == ""
}

func (s Specification) Validate() error {
	set := 0
	if s.LEDDriverIC != nil {
		set++
	}
	if s.Diode != nil {
		set++
	}
	if s.Generic != nil {
		set++
	}
	if set > 1 {
		return invalidProduct("more than one specification variant set")
	}
	switch s.Kind() {
	case CategoryLEDDriverIC:
		return s.LEDDriverIC.Validate()
	case CategoryDiode:
		return s.Diode.Validate()
	case CategoryGeneric:
		return s.Generic.Validate()
	}
	return nil
}

func (s Specification) PackageType() string {
	switch s.Kind() {
	case CategoryLEDDriverIC:
		return s.LEDDriverIC.PackageType
	case CategoryDiode:
		return s.Diode.PackageType
	case CategoryGeneric:
		return s.Generic.PackageType
	}
	return ""
}

func (s Specification) MountingType() string {
	switch s.Kind() {
	case CategoryLEDDriverIC:
		return s.LEDDriverIC.MountingType
	case CategoryDiode:
		return s.Diode.MountingType
	case CategoryGeneric:
		return s.Generic.MountingType
	}
	return ""
}

// OperatingTemperature is shared by the led driver and diode variants.
func (s Specification) OperatingTemperature() *Range {
	switch s.Kind() {
	case CategoryLEDDriverIC:
		return s.LEDDriverIC.OperatingTemperature
	case CategoryDiode:
		return s.Diode.OperatingTemperature
	}
	return nil
}

type specificationEnvelope struct {
	Kind CategoryKind   `json:"kind"`
	Data jsoncompat.Raw `json:"data"`
}

func (s Specification) MarshalJSON() ([]byte, error) {
	var data any
	switch s.Kind() {
	case CategoryLEDDriverIC:
		data = s.LEDDriverIC
	case CategoryDiode:
		data = s.Diode
	case CategoryGeneric:
		data = s.Generic
	default:
		return []byte("null"), nil
	}
	raw, err := jsoncompat.Marshal(data)
	if err != nil {
		return nil, err
	}
	return jsoncompat.Marshal(specificationEnvelope{Kind: s.Kind(), Data: raw})
}

func (s *Specification) UnmarshalJSON(data []byte) error {
	*s = Specification{}
	if strings.TrimSpace(string(data)) == "null" {
		return nil
	}
	env := specificationEnvelope{}
	if err := jsoncompat.Unmarshal(data, &env); err != nil {
		return err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	switch env.Kind {
	case CategoryLEDDriverIC:
		s.LEDDriverIC = &LEDDriverICSpec{}
		return jsoncompat.Unmarshal(env.Data, s.LEDDriverIC)
	case CategoryDiode:
		s.Diode = &DiodeSpec{}
		return jsoncompat.Unmarshal(env.Data, s.Diode)
	case CategoryGeneric:
		s.Generic = &GenericSpec{}
		return jsoncompat.Unmarshal(env.Data, s.Generic)
	}
	return fmt.Errorf("%w: unknown kind %q", ErrInvalidSpecification, env.Kind)
}

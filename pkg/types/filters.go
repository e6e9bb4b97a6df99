package types

import (
	"fmt"
	"maps"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
)

type FacetKey string

const (
	ArrayDelimiter = ","
	RangeDelimiter = "-"
	// legacy multi value separator used by the str= parameter
	valueSeparator = "||"
)

type NumberRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether other lies fully inside r.
func (r NumberRange) Contains(other NumberRange) bool {
	return other.Min >= r.Min && other.Max <= r.Max
}

func (r NumberRange) Overlaps(other NumberRange) bool {
	return other.Min <= r.Max && other.Max >= r.Min
}

func (r NumberRange) String() string {
	return formatNumber(r.Min) + RangeDelimiter + formatNumber(r.Max)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FilterValue is the active value of one facet, either a set of strings or a numeric range.
type FilterValue struct {
	Values []string
	Range  *NumberRange
}

func Values(v ...string) FilterValue {
	return FilterValue{Values: v}
}

func Between(lo, hi float64) FilterValue {
	return FilterValue{Range: &NumberRange{Min: lo, Max: hi}}
}

func (v FilterValue) IsEmpty() bool {
	if v.Range != nil {
		return false
	}
	for _, s := range v.Values {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

func (v FilterValue) Has(value string) bool {
	return slices.Contains(v.Values, value)
}

func (v FilterValue) MarshalJSON() ([]byte, error) {
	if v.Range != nil {
		return jsoncompat.Marshal(v.Range)
	}
	if v.Values == nil {
		return []byte("[]"), nil
	}
	return jsoncompat.Marshal(v.Values)
}

// UnmarshalJSON accepts "a", ["a","b"], [lo,hi] and {"min":lo,"max":hi}.
func (v *FilterValue) UnmarshalJSON(data []byte) error {
	*v = FilterValue{}
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		return nil
	case strings.HasPrefix(s, "\""):
		var str string
		if err := jsoncompat.Unmarshal(data, &str); err != nil {
			return err
		}
		v.Values = splitValues(str)
		return nil
	case strings.HasPrefix(s, "{"):
		rng := NumberRange{}
		if err := jsoncompat.Unmarshal(data, &rng); err != nil {
			return err
		}
		v.Range = &rng
		return nil
	case strings.HasPrefix(s, "["):
		var raw []any
		if err := jsoncompat.Unmarshal(data, &raw); err != nil {
			return err
		}
		if len(raw) == 2 {
			lo, lok := raw[0].(float64)
			hi, hok := raw[1].(float64)
			if lok && hok {
				v.Range = &NumberRange{Min: lo, Max: hi}
				return nil
			}
		}
		for _, item := range raw {
			switch typed := item.(type) {
			case string:
				v.Values = append(v.Values, typed)
			case float64:
				v.Values = append(v.Values, formatNumber(typed))
			case bool:
				v.Values = append(v.Values, strconv.FormatBool(typed))
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported filter value %s", s)
}

// FilterState maps facet keys to their active values.
type FilterState map[FacetKey]FilterValue

// Active returns the keys with non empty values in a stable order.
func (f FilterState) Active() []FacetKey {
	keys := make([]FacetKey, 0, len(f))
	for k, v := range f {
		if !v.IsEmpty() {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func (f FilterState) HasField(key FacetKey) bool {
	v, ok := f[key]
	return ok && !v.IsEmpty()
}

// WithOut returns a copy without the given key.
func (f FilterState) WithOut(key FacetKey) FilterState {
	ret := make(FilterState, len(f))
	for k, v := range f {
		if k != key {
			ret[k] = v
		}
	}
	return ret
}

func (f FilterState) Clone() FilterState {
	return maps.Clone(f)
}

// Encode writes multi values as sorted repeated keys and ranges as lo-hi. Commas and
// backslashes inside a value are escaped so a single value never reads back as a list.
func (f FilterState) Encode() url.Values {
	ret := url.Values{}
	for _, key := range f.Active() {
		v := f[key]
		if v.Range != nil {
			ret.Set(string(key), v.Range.String())
			continue
		}
		values := make([]string, 0, len(v.Values))
		for _, s := range v.Values {
			if s = strings.TrimSpace(s); s != "" {
				values = append(values, s)
			}
		}
		slices.Sort(values)
		for _, s := range slices.Compact(values) {
			ret.Add(string(key), escapeValue(s))
		}
	}
	return ret
}

// Normalize resolves aliases and drops unknown or empty facets.
func (f FilterState) Normalize(schema FacetSchema) FilterState {
	ret := FilterState{}
	for k, v := range f {
		key, isRange, ok := schema.Resolve(string(k))
		if !ok || v.IsEmpty() {
			continue
		}
		if isRange {
			if v.Range == nil {
				rng, err := ParseRange(strings.Join(v.Values, ArrayDelimiter))
				if err != nil {
					continue
				}
				v.Range = &rng
			}
			if v.Range.Min > v.Range.Max {
				continue
			}
			ret[key] = FilterValue{Range: v.Range}
			continue
		}
		existing := ret[key]
		existing.Values = appendUnique(existing.Values, v.Values...)
		if len(existing.Values) > 0 {
			ret[key] = existing
		}
	}
	return ret
}

// FacetSchema resolves a query parameter to a facet.
type FacetSchema interface {
	Resolve(param string) (key FacetKey, isRange bool, ok bool)
}

type ParseWarning struct {
	Param  string `json:"param"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

var reservedParams = map[string]struct{}{
	"q": {}, "query": {}, "sort": {}, "page": {}, "size": {}, "counts": {}, "nf": {}, "str": {}, "rng": {},
}

// ParseFilterState is the single place query strings become filter state.
func ParseFilterState(query url.Values, schema FacetSchema) (FilterState, []ParseWarning) {
	state := FilterState{}
	warnings := make([]ParseWarning, 0)

	addRange := func(param string, key FacetKey, raw string) {
		rng, err := ParseRange(raw)
		if err != nil {
			warnings = append(warnings, ParseWarning{Param: param, Value: raw, Reason: err.Error()})
			return
		}
		state[key] = FilterValue{Range: &rng}
	}
	addValues := func(key FacetKey, values []string) {
		existing := state[key]
		existing.Values = appendUnique(existing.Values, values...)
		if len(existing.Values) > 0 {
			state[key] = existing
		}
	}

	// sorted so aliases of the same facet merge in the same order every time
	for _, param := range slices.Sorted(maps.Keys(query)) {
		if _, reserved := reservedParams[param]; reserved {
			continue
		}
		key, isRange, ok := schema.Resolve(param)
		if !ok {
			continue
		}
		values := query[param]
		for _, raw := range values {
			switch {
			case isRange:
				addRange(param, key, raw)
			case len(values) > 1:
				// repeated keys carry one value each
				addValues(key, wholeValue(raw))
			default:
				addValues(key, splitValues(raw))
			}
		}
	}

	for _, v := range query["str"] {
		name, value, found := strings.Cut(v, ":")
		if !found {
			warnings = append(warnings, ParseWarning{Param: "str", Value: v, Reason: "expected key:value"})
			continue
		}
		key, isRange, ok := schema.Resolve(strings.TrimSpace(name))
		if !ok || isRange {
			continue
		}
		for _, part := range strings.Split(value, valueSeparator) {
			addValues(key, splitValues(part))
		}
	}

	for _, v := range query["rng"] {
		name, value, found := strings.Cut(v, ":")
		if !found {
			warnings = append(warnings, ParseWarning{Param: "rng", Value: v, Reason: "expected key:lo-hi"})
			continue
		}
		key, isRange, ok := schema.Resolve(strings.TrimSpace(name))
		if !ok || !isRange {
			continue
		}
		addRange("rng", key, value)
	}

	return state, warnings
}

// ParseRange reads "lo-hi" (negative numbers allowed, "-40--10") or "lo,hi".
// Trailing input, non finite bounds and lo > hi are rejected.
func ParseRange(raw string) (NumberRange, error) {
	raw = strings.TrimSpace(raw)
	lo, hi, ok := parseCommaRange(raw)
	if !ok {
		lo, hi, ok = parseDashRange(raw)
	}
	if !ok {
		return NumberRange{}, fmt.Errorf("malformed range %q", raw)
	}
	if lo > hi {
		return NumberRange{}, fmt.Errorf("reversed range %q, min is greater than max", raw)
	}
	return NumberRange{Min: lo, Max: hi}, nil
}

func parseBound(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseCommaRange(raw string) (float64, float64, bool) {
	a, b, found := strings.Cut(raw, ArrayDelimiter)
	if !found {
		return 0, 0, false
	}
	lo, ok := parseBound(a)
	if !ok {
		return 0, 0, false
	}
	hi, ok := parseBound(b)
	return lo, hi, ok
}

// parseDashRange tries every dash after the first character as the separator,
// the first split where both sides are complete numbers wins.
func parseDashRange(raw string) (float64, float64, bool) {
	for i := 1; i < len(raw)-1; i++ {
		if raw[i] != RangeDelimiter[0] {
			continue
		}
		lo, ok := parseBound(raw[:i])
		if !ok {
			continue
		}
		if hi, ok := parseBound(raw[i+1:]); ok {
			return lo, hi, true
		}
	}
	return 0, 0, false
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, ArrayDelimiter, `\`+ArrayDelimiter)

func escapeValue(s string) string {
	return valueEscaper.Replace(s)
}

// wholeValue unescapes a value that is never split on commas.
func wholeValue(raw string) []string {
	return splitEscaped(raw, false)
}

// splitValues splits on unescaped commas, "a\,b" stays one value.
func splitValues(raw string) []string {
	return splitEscaped(raw, true)
}

func splitEscaped(raw string, split bool) []string {
	ret := make([]string, 0, 1)
	var b strings.Builder
	flush := func() {
		if part := strings.TrimSpace(b.String()); part != "" {
			ret = append(ret, part)
		}
		b.Reset()
	}
	escaped := false
	for _, r := range raw {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case split && string(r) == ArrayDelimiter:
			flush()
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteRune('\\')
	}
	flush()
	return ret
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" && !slices.Contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}

package facet

import (
	"strconv"
	"strings"
)

// BoolLabels are the option values shown for boolean facets.
type BoolLabels struct {
	True  string `json:"true"`
	False string `json:"false"`
}

var (
	EnglishLabels = BoolLabels{True: "Yes", False: "No"}
	KoreanLabels  = BoolLabels{True: "있음", False: "없음"}
)

func LabelsFor(locale string) BoolLabels {
	if strings.HasPrefix(strings.ToLower(locale), "ko") {
		return KoreanLabels
	}
	return EnglishLabels
}

func (l BoolLabels) For(v bool) string {
	if v {
		return l.True
	}
	return l.False
}

// Parse maps a label, or a plain true/false, back to a bool.
func (l BoolLabels) Parse(s string) (bool, bool) {
	switch s {
	case l.True:
		return true, true
	case l.False:
		return false, true
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b, true
	}
	return false, false
}

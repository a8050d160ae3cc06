package ebay

import "strings"

// Canonical condition codes. Marketplace condition text is free-form and
// inconsistent; every known variant resolves to one of these.
const (
	ConditionNew         = "NEW"
	ConditionNewOther    = "NEW_OTHER"
	ConditionRefurbished = "REFURBISHED"
	ConditionUsed        = "USED"
	ConditionForParts    = "FOR_PARTS"
)

// conditionVariants maps normalized marketplace condition text to a
// canonical code. The table is fixed; text matching no variant is treated as
// unknown and the item is dropped.
var conditionVariants = map[string]string{
	"new":                      ConditionNew,
	"brand new":                ConditionNew,
	"new with tags":            ConditionNew,
	"new with box":             ConditionNew,
	"new in box":               ConditionNew,
	"new other":                ConditionNewOther,
	"new other (see details)":  ConditionNewOther,
	"new without tags":         ConditionNewOther,
	"new without box":          ConditionNewOther,
	"open box":                 ConditionNewOther,
	"certified refurbished":    ConditionRefurbished,
	"certified - refurbished":  ConditionRefurbished,
	"seller refurbished":       ConditionRefurbished,
	"refurbished":              ConditionRefurbished,
	"excellent - refurbished":  ConditionRefurbished,
	"very good - refurbished":  ConditionRefurbished,
	"good - refurbished":       ConditionRefurbished,
	"used":                     ConditionUsed,
	"pre-owned":                ConditionUsed,
	"pre owned":                ConditionUsed,
	"used - like new":          ConditionUsed,
	"like new":                 ConditionUsed,
	"excellent":                ConditionUsed,
	"very good":                ConditionUsed,
	"good":                     ConditionUsed,
	"acceptable":               ConditionUsed,
	"for parts or not working": ConditionForParts,
	"for parts":                ConditionForParts,
	"parts only":               ConditionForParts,
	"not working":              ConditionForParts,
}

// ResolveCondition maps free-text marketplace condition to a canonical code.
// ok is false when the text matches no known variant.
func ResolveCondition(text string) (code string, ok bool) {
	code, ok = conditionVariants[strings.ToLower(strings.TrimSpace(text))]
	return code, ok
}

// IsCanonicalCondition reports whether code is one of the canonical
// condition codes.
func IsCanonicalCondition(code string) bool {
	switch code {
	case ConditionNew, ConditionNewOther, ConditionRefurbished, ConditionUsed, ConditionForParts:
		return true
	}
	return false
}

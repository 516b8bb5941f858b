package matching

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unit is a canonical quantity unit. Volumes normalize to ml, masses to g,
// unitless counts to count. Unrecognized units ("pcs", "pack") pass through
// unchanged so same-unit listings still compare.
type Unit string

const (
	UnitMl    Unit = "ml"
	UnitG     Unit = "g"
	UnitCount Unit = "count"
)

// Quantity is a parsed pack size in canonical units.
type Quantity struct {
	Value float64
	Unit  Unit
}

var (
	ltrRe         = regexp.MustCompile(`\bltr\b`)
	gmRe          = regexp.MustCompile(`\bgm\b`)
	digitLetterRe = regexp.MustCompile(`\b(\d)\s*([a-z])`)

	packPrefixRe = regexp.MustCompile(`^(\d+)\s*x\s*([\d.]+)\s*([a-z]+)`)
	packSuffixRe = regexp.MustCompile(`^([\d.]+)\s*([a-z]+)\s*x\s*(\d+)`)
	simpleRe     = regexp.MustCompile(`^([\d.]+)\s*([a-z]+)`)
	bareNumberRe = regexp.MustCompile(`^([\d.]+)$`)
)

// ParseQuantity parses a storefront pack-size string. Three forms are
// recognized: "n x v unit" (either order), "v unit", and a bare number
// (treated as a count). Liters multiply to ml, kilograms to g. Returns nil
// when the string fits no form.
func ParseQuantity(raw string) *Quantity {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}
	s = ltrRe.ReplaceAllString(s, "l")
	s = gmRe.ReplaceAllString(s, "g")
	s = digitLetterRe.ReplaceAllString(s, "${1}${2}")

	var value float64
	var unit string
	matched := false

	if m := packPrefixRe.FindStringSubmatch(s); m != nil {
		count, errC := strconv.Atoi(m[1])
		val, errV := strconv.ParseFloat(m[2], 64)
		if errC == nil && errV == nil {
			value = float64(count) * val
			unit = m[3]
			matched = true
		}
	}
	if !matched {
		if m := packSuffixRe.FindStringSubmatch(s); m != nil {
			val, errV := strconv.ParseFloat(m[1], 64)
			count, errC := strconv.Atoi(m[3])
			if errV == nil && errC == nil {
				value = val * float64(count)
				unit = m[2]
				matched = true
			}
		}
	}
	if !matched {
		if m := simpleRe.FindStringSubmatch(s); m != nil {
			val, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				value = val
				unit = m[2]
				matched = true
			}
		}
	}
	if !matched {
		if m := bareNumberRe.FindStringSubmatch(s); m != nil {
			val, err := strconv.ParseFloat(m[1], 64)
			if err == nil && val == math.Trunc(val) {
				value = val
				unit = string(UnitCount)
				matched = true
			}
		}
	}
	if !matched {
		return nil
	}

	switch unit {
	case "l":
		value *= 1000
		unit = string(UnitMl)
	case "kg":
		value *= 1000
		unit = string(UnitG)
	}
	return &Quantity{Value: value, Unit: Unit(unit)}
}

// PriceClose reports whether two prices fall within a symmetric relative
// tolerance, measured against the smaller price so that 100 vs 121 is 21%
// apart. Two zero prices match; exactly one zero never does. A nil price on
// either side is a mismatch.
func PriceClose(a, b *int, tolerance float64) bool {
	if a == nil || b == nil {
		return false
	}
	pa, pb := float64(*a), float64(*b)
	if pa == 0 && pb == 0 {
		return true
	}
	if pa == 0 || pb == 0 {
		return false
	}
	base := math.Min(math.Abs(pa), math.Abs(pb))
	return math.Abs(pa-pb)/base <= tolerance
}

// QuantitySimilar reports whether two parsed quantities share a unit and
// fall within a symmetric relative value tolerance, measured against the
// smaller value. Two zero values match; exactly one zero never does. A nil
// quantity on either side is a mismatch.
func QuantitySimilar(a, b *Quantity, tolerance float64) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Unit != b.Unit {
		return false
	}
	if a.Value == 0 && b.Value == 0 {
		return true
	}
	if a.Value == 0 || b.Value == 0 {
		return false
	}
	base := math.Min(math.Abs(a.Value), math.Abs(b.Value))
	return math.Abs(a.Value-b.Value)/base <= tolerance
}

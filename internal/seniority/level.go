// Package seniority derives a seniority level from required months of experience.
package seniority

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type Level string

const (
	Junior       Level = "Junior"
	MidLevel     Level = "Mid-Level"
	Senior       Level = "Senior"
	Lead         Level = "Lead"
	NotSpecified Level = "Not specified"
)

// leadCeiling is the top of the last closed bucket. Anything above it is
// still Lead.
const leadCeiling = 180

type bucket struct {
	min, max float64
	level    Level
}

var buckets = []bucket{
	{0, 23, Junior},
	{24, 59, MidLevel},
	{60, 119, Senior},
	{120, leadCeiling, Lead},
}

// Classify maps months of experience to a Level. Bounds are inclusive, so a
// fractional value that falls between two buckets (23.5) is NotSpecified.
func Classify(months float64) Level {
	if math.IsNaN(months) {
		return NotSpecified
	}
	for _, b := range buckets {
		if b.min <= months && months <= b.max {
			return b.level
		}
	}
	if months > leadCeiling {
		return Lead
	}
	return NotSpecified
}

// ClassifyValue accepts an untyped decoded value. Anything that is not a
// number, or a string holding one, is NotSpecified.
func ClassifyValue(v any) Level {
	switch x := v.(type) {
	case float64:
		return Classify(x)
	case int:
		return Classify(float64(x))
	case int64:
		return Classify(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return NotSpecified
		}
		return Classify(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return NotSpecified
		}
		return Classify(f)
	default:
		return NotSpecified
	}
}

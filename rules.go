package jobquery

import (
	"strconv"
	"strings"
)

// RangeRule requires the value of Min not to exceed the value of Max when
// both fields are accepted.
type RangeRule struct {
	Min string
	Max string
}

// DefaultRangeRules pairs the salary and pay-grade bounds of the USAJobs
// search API.
var DefaultRangeRules = []RangeRule{
	{Min: "RemunerationMinimumAmount", Max: "RemunerationMaximumAmount"},
	{Min: "PayGradeLow", Max: "PayGradeHigh"},
}

// inverted reports whether lo > hi. Values that are not numeric are compared
// as strings.
func (rr RangeRule) inverted(lo, hi Value) bool {
	a, aok := numeric(lo)
	b, bok := numeric(hi)
	if aok && bok {
		return a > b
	}
	return strings.Compare(lo.Text, hi.Text) > 0
}

func numeric(v Value) (int64, bool) {
	if v.Type == TypeInteger {
		return v.Int, true
	}
	n, err := strconv.ParseInt(v.Text, 10, 64)
	return n, err == nil
}

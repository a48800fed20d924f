package bpm

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	integerPattern = regexp.MustCompile(`^-?[0-9]+$`)
	decimalPattern = regexp.MustCompile(`^-?[0-9]+\.[0-9]+$`)
	digitRun       = regexp.MustCompile(`[0-9]+`)
)

// NumericParser decides whether a cell text carries a number.
type NumericParser interface {
	Parse(text string) (bool, *int)
}

// DefaultNumericParser is the uncached parser.
type DefaultNumericParser struct{}

func (DefaultNumericParser) Parse(text string) (bool, *int) {
	return ParseNumeric(text)
}

// ParseNumeric extracts the integer carried by a cell text.
//
// Handled formats, in order:
//   - plain integers, optionally negative: "25", "-7"
//   - decimals, truncated toward zero: "25.9" -> 25, "-3.7" -> -3
//   - mixed text, first digit run by position: "25-Q1" -> 25, "ABC123DEF456" -> 123
//
// Anything else, including values that overflow int, is not numeric.
func ParseNumeric(text string) (bool, *int) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return false, nil
	}

	if integerPattern.MatchString(cleaned) {
		return parseInt(cleaned)
	}

	if decimalPattern.MatchString(cleaned) {
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return false, nil
		}
		t := math.Trunc(f)
		if t >= math.MaxInt64 || t < math.MinInt64 {
			return false, nil
		}
		v := int(t)
		return true, &v
	}

	if run := digitRun.FindString(cleaned); run != "" {
		return parseInt(run)
	}

	return false, nil
}

func parseInt(s string) (bool, *int) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return false, nil
	}
	return true, &v
}

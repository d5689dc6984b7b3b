// Package datecomp reconstructs partial calendar dates.
//
// Address-book dates arrive as full dates, year-only values, or month/day
// pairs without a year. A Components value keeps whichever of year, month, and
// day are known. String parsing is a heuristic: the only disambiguating signal
// is that a number above 1000 is taken to be a year.
package datecomp

import (
	"strconv"
	"strings"
)

const yearThreshold = 1000

// Components is a partial date. Nil fields are unknown.
type Components struct {
	Year  *int
	Month *int
	Day   *int
}

// IsZero reports whether no component is set.
func (c Components) IsZero() bool {
	return c.Year == nil && c.Month == nil && c.Day == nil
}

// Parse reads a date from a string delimited by '-' or '/'. Non-numeric
// tokens are discarded. Strings that do not fit a known shape yield an empty
// Components.
func Parse(s string) Components {
	var parts []int
	for _, token := range strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' }) {
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		parts = append(parts, n)
	}

	var c Components
	switch len(parts) {
	case 1:
		if parts[0] > yearThreshold {
			c.Year = ptr(parts[0])
		} else {
			c.Day = ptr(parts[0])
		}
	case 2:
		first, second := parts[0] > yearThreshold, parts[1] > yearThreshold
		switch {
		case first && !second:
			c.Year, c.Month = ptr(parts[0]), ptr(parts[1])
		case second && !first:
			c.Year, c.Month = ptr(parts[1]), ptr(parts[0])
		default:
			c.Month, c.Day = ptr(parts[0]), ptr(parts[1])
		}
	case 3:
		if parts[0] > yearThreshold {
			c.Year, c.Month, c.Day = ptr(parts[0]), ptr(parts[1]), ptr(parts[2])
		} else {
			c.Month, c.Day, c.Year = ptr(parts[0]), ptr(parts[1]), ptr(parts[2])
		}
	}
	return c
}

// FromMap copies the year, month, and day keys present in m. Values may be
// any integer type or a float64 holding an integer, as produced by JSON
// decoding.
func FromMap(m map[string]any) Components {
	var c Components
	c.Year = intValue(m["year"])
	c.Month = intValue(m["month"])
	c.Day = intValue(m["day"])
	return c
}

// Decode dispatches on the input shape: strings go through Parse, maps through
// FromMap. Anything else yields an empty Components.
func Decode(v any) Components {
	switch t := v.(type) {
	case string:
		return Parse(t)
	case map[string]any:
		return FromMap(t)
	case map[string]int:
		m := make(map[string]any, len(t))
		for k, n := range t {
			m[k] = n
		}
		return FromMap(m)
	case Components:
		return t
	default:
		return Components{}
	}
}

// ToMap returns only the set components.
func (c Components) ToMap() map[string]int {
	m := make(map[string]int, 3)
	if c.Year != nil {
		m["year"] = *c.Year
	}
	if c.Month != nil {
		m["month"] = *c.Month
	}
	if c.Day != nil {
		m["day"] = *c.Day
	}
	return m
}

// String formats the date as yyyy-mm-dd, --mm-dd, or yyyy, leaving unknown
// components out.
func (c Components) String() string {
	var b strings.Builder
	if c.Year != nil {
		b.WriteString(strconv.Itoa(*c.Year))
	} else if c.Month != nil {
		b.WriteString("-")
	}
	if c.Month != nil {
		b.WriteString("-" + pad2(*c.Month))
	}
	if c.Day != nil {
		if c.Month == nil {
			b.WriteString("---")
		} else {
			b.WriteString("-")
		}
		b.WriteString(pad2(*c.Day))
	}
	return b.String()
}

func intValue(v any) *int {
	switch t := v.(type) {
	case int:
		return ptr(t)
	case int32:
		return ptr(int(t))
	case int64:
		return ptr(int(t))
	case float64:
		if t == float64(int(t)) {
			return ptr(int(t))
		}
	}
	return nil
}

func pad2(n int) string {
	if n >= 0 && n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func ptr(n int) *int { return &n }

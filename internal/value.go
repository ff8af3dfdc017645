package perftop

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is one cell of a metric row. Performance Analyzer rows mix numbers,
// dimension strings and nulls, so a cell is either a number or a string.
type Value struct {
	num   float64
	str   string
	isNum bool
}

// Num returns a numeric cell.
func Num(f float64) Value {
	return Value{num: f, isNum: true}
}

// Str returns a string cell.
func Str(s string) Value {
	return Value{str: s}
}

// Float returns the numeric content of v.
func (v Value) Float() (float64, bool) {
	return v.num, v.isNum
}

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool {
	return v.isNum
}

// String renders v for display. Numbers use the shortest exact representation.
func (v Value) String() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// MarshalJSON keeps numbers numeric when a frame is dumped.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isNum {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// FormatNumber is the canonical number formatter applied to every numeric
// leaf the endpoint returns:
//   - null becomes the string "null"
//   - "" is returned unchanged
//   - anything that does not parse as a number is returned unchanged
//   - numbers are rounded to 2 decimals, or to an integer once that reaches 100 in magnitude
func FormatNumber(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Str("null")
	case float64:
		return Num(RoundNumber(t))
	case float32:
		return Num(RoundNumber(float64(t)))
	case int:
		return Num(RoundNumber(float64(t)))
	case int64:
		return Num(RoundNumber(float64(t)))
	case json.Number:
		return FormatNumber(t.String())
	case Value:
		if f, ok := t.Float(); ok {
			return Num(RoundNumber(f))
		}
		return FormatNumber(t.String())
	case string:
		if t == "" {
			return Str(t)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Str(t)
		}
		return Num(RoundNumber(f))
	default:
		return Str(fmt.Sprint(t))
	}
}

// RoundNumber rounds to 2 decimal places, then to the nearest integer when
// the 2-decimal result is 100 or more in magnitude. Halves round up.
func RoundNumber(f float64) float64 {
	r := roundHalfUp(f*100) / 100
	if math.Abs(r) < 100 {
		return r
	}
	return roundHalfUp(r)
}

func roundHalfUp(f float64) float64 {
	return math.Floor(f + 0.5)
}

// numeric returns the float content of v, treating null and text as 0.
func numeric(v Value) float64 {
	if f, ok := v.Float(); ok {
		return f
	}
	return 0
}

// jsonFloat reads a JSON number (or numeric string) decoded into an any.
func jsonFloat(raw any) (float64, bool) {
	switch t := raw.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

// jsonTimestamp reads a source-reported timestamp; missing or malformed values read as 0.
func jsonTimestamp(raw any) int64 {
	f, ok := jsonFloat(raw)
	if !ok {
		return 0
	}
	return int64(f)
}

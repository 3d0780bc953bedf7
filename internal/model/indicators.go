package model

import "strconv"

// Float is an optional numeric value. An undefined Float is never a computed zero.
type Float struct {
	Value float64
	Valid bool
}

// Some returns a defined Float.
func Some(v float64) Float { return Float{Value: v, Valid: true} }

// None returns an undefined Float.
func None() Float { return Float{} }

// Get returns the value and whether it is defined.
func (f Float) Get() (float64, bool) { return f.Value, f.Valid }

// Above reports whether f is defined and strictly greater than x.
func (f Float) Above(x float64) bool { return f.Valid && f.Value > x }

// Below reports whether f is defined and strictly less than x.
func (f Float) Below(x float64) bool { return f.Valid && f.Value < x }

func (f Float) String() string {
	if !f.Valid {
		return "-"
	}
	return strconv.FormatFloat(f.Value, 'f', 2, 64)
}

// IndicatorSeries is aligned index-for-index with the CandleSeries it was computed from.
type IndicatorSeries []Float

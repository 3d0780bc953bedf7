package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrMalformedBatch is returned when a raw candle batch cannot be normalized into a CandleSeries.
var ErrMalformedBatch = errors.New("malformed candle batch")

// utcLayout is the layout of candle_date_time_utc in Upbit candle payloads.
const utcLayout = "2006-01-02T15:04:05"

// Candle represents a single OHLCV bar. Value is the accumulated trade value of the bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Value  float64
}

// RawCandle is one bar as delivered by the candle source. Numeric fields are pointers so a
// missing field can be told apart from a zero.
type RawCandle struct {
	Market    string   `json:"market"`
	UTC       string   `json:"candle_date_time_utc"`
	KST       string   `json:"candle_date_time_kst"`
	Open      *float64 `json:"opening_price"`
	High      *float64 `json:"high_price"`
	Low       *float64 `json:"low_price"`
	Close     *float64 `json:"trade_price"`
	Timestamp int64    `json:"timestamp"`
	Value     *float64 `json:"candle_acc_trade_price"`
	Volume    *float64 `json:"candle_acc_trade_volume"`
}

// RawBatch is an ordered-or-unordered list of raw bars for one instrument.
type RawBatch []RawCandle

// CandleSeries is a time-ascending sequence of candles for one instrument with no duplicate timestamps.
type CandleSeries []Candle

// NewCandleSeries projects a raw batch onto the canonical Candle shape and sorts it chronologically.
func NewCandleSeries(batch RawBatch) (CandleSeries, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrMalformedBatch)
	}

	series := make(CandleSeries, 0, len(batch))
	for i, raw := range batch {
		c, err := raw.toCandle()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedBatch, i, err)
		}
		series = append(series, c)
	}

	sort.SliceStable(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	for i := 1; i < len(series); i++ {
		if series[i].Time.Equal(series[i-1].Time) {
			return nil, fmt.Errorf("%w: duplicate timestamp %s", ErrMalformedBatch, series[i].Time.Format(time.RFC3339))
		}
	}
	return series, nil
}

func (r RawCandle) toCandle() (Candle, error) {
	t, err := r.time()
	if err != nil {
		return Candle{}, err
	}

	fields := []struct {
		name string
		v    *float64
	}{
		{"opening_price", r.Open},
		{"high_price", r.High},
		{"low_price", r.Low},
		{"trade_price", r.Close},
		{"candle_acc_trade_volume", r.Volume},
		{"candle_acc_trade_price", r.Value},
	}
	for _, f := range fields {
		if f.v == nil {
			return Candle{}, fmt.Errorf("missing %s", f.name)
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) || *f.v < 0 {
			return Candle{}, fmt.Errorf("invalid %s: %v", f.name, *f.v)
		}
	}
	if *r.Close == 0 {
		return Candle{}, errors.New("zero trade_price")
	}

	return Candle{
		Time:   t,
		Open:   *r.Open,
		High:   *r.High,
		Low:    *r.Low,
		Close:  *r.Close,
		Volume: *r.Volume,
		Value:  *r.Value,
	}, nil
}

// time prefers the UTC candle string and falls back to the millisecond timestamp.
func (r RawCandle) time() (time.Time, error) {
	if r.UTC != "" {
		t, err := time.ParseInLocation(utcLayout, r.UTC, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse candle_date_time_utc %q: %v", r.UTC, err)
		}
		return t, nil
	}
	if r.Timestamp > 0 {
		return time.UnixMilli(r.Timestamp).UTC(), nil
	}
	return time.Time{}, errors.New("missing timestamp")
}

// Closes returns the close prices of the series in order.
func (s CandleSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, c := range s {
		closes[i] = c.Close
	}
	return closes
}

// Last returns the most recent candle. It panics on an empty series.
func (s CandleSeries) Last() Candle {
	return s[len(s)-1]
}

package calculator

import (
	"errors"
	"fmt"

	"TrendRadar/internal/model"
)

// ErrInvalidParameter is returned for a non-positive window or period.
var ErrInvalidParameter = errors.New("invalid parameter")

// SMA computes the simple moving average of closes over window.
// Index i is defined only once the window is full (i >= window-1).
func SMA(closes []float64, window int) (model.IndicatorSeries, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %d", ErrInvalidParameter, window)
	}
	out := make(model.IndicatorSeries, len(closes))
	if len(closes) < 2 {
		return out, nil
	}

	// Each window is summed from scratch so values do not drift over long series.
	for i := window - 1; i < len(closes); i++ {
		out[i] = model.Some(mean(closes[i-window+1 : i+1]))
	}
	return out, nil
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

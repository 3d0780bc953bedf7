package calculator

import (
	"fmt"

	"TrendRadar/internal/model"
)

// rsiEpsilon keeps RS finite when no losses have been seen.
const rsiEpsilon = 1e-12

// RSI computes the relative strength index of closes, smoothing gains and losses with an
// exponential moving average (alpha = 1/period) seeded with zero at the first bar.
// Unlike SMA there is no warm-up gap: every index is defined once two or more closes exist.
func RSI(closes []float64, period int) (model.IndicatorSeries, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive, got %d", ErrInvalidParameter, period)
	}
	out := make(model.IndicatorSeries, len(closes))
	if len(closes) < 2 {
		return out, nil
	}

	alpha := 1.0 / float64(period)
	var avgGain, avgLoss float64
	for i := range closes {
		gain, loss := 0.0, 0.0
		if i > 0 {
			change := closes[i] - closes[i-1]
			if change > 0 {
				gain = change
			} else {
				loss = -change
			}
		}
		if i == 0 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		rs := avgGain / (avgLoss + rsiEpsilon)
		out[i] = model.Some(100.0 - 100.0/(1.0+rs))
	}
	return out, nil
}

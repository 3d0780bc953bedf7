package calculator

import (
	"fmt"

	"TrendRadar/internal/model"
)

// Crossovers derives cross-up/cross-down events from an aligned fast/slow pair.
// Equality on the previous bar counts as touching; the current bar must separate strictly,
// so a bar can never be both a cross-up and a cross-down.
func Crossovers(fast, slow model.IndicatorSeries) ([]model.Crossover, error) {
	if len(fast) != len(slow) {
		return nil, fmt.Errorf("%w: series length mismatch %d != %d", ErrInvalidParameter, len(fast), len(slow))
	}
	out := make([]model.Crossover, len(fast))
	for i := 1; i < len(fast); i++ {
		out[i] = crossAt(fast[i-1], slow[i-1], fast[i], slow[i])
	}
	return out, nil
}

func crossAt(prevFast, prevSlow, fast, slow model.Float) model.Crossover {
	if !prevFast.Valid || !prevSlow.Valid || !fast.Valid || !slow.Valid {
		return model.CrossNone
	}
	switch {
	case prevFast.Value <= prevSlow.Value && fast.Value > slow.Value:
		return model.CrossUp
	case prevFast.Value >= prevSlow.Value && fast.Value < slow.Value:
		return model.CrossDown
	default:
		return model.CrossNone
	}
}

package strategy

import (
	"fmt"

	"TrendRadar/internal/calculator"
	"TrendRadar/internal/model"
)

// Classify maps one bar's crossover and RSI to a signal. SELL is checked first, so a
// cross-down or an overbought RSI wins over a fresh cross-up.
func Classify(cross model.Crossover, rsi model.Float, p Params) model.Signal {
	switch {
	case cross == model.CrossDown || rsi.Above(p.SellRSI):
		return model.SignalSell
	case cross == model.CrossUp && rsi.Below(p.BuyRSI):
		return model.SignalBuy
	default:
		return model.SignalHold
	}
}

// ComputeIndicators derives one SignalRow per candle. Everything is recomputed from the
// series on every call.
func ComputeIndicators(series model.CandleSeries, p Params) ([]model.SignalRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	closes := series.Closes()

	fast, err := calculator.SMA(closes, p.FastWindow)
	if err != nil {
		return nil, fmt.Errorf("fast sma: %w", err)
	}
	slow, err := calculator.SMA(closes, p.SlowWindow)
	if err != nil {
		return nil, fmt.Errorf("slow sma: %w", err)
	}
	rsi, err := calculator.RSI(closes, p.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	crosses, err := calculator.Crossovers(fast, slow)
	if err != nil {
		return nil, fmt.Errorf("crossovers: %w", err)
	}

	rows := make([]model.SignalRow, len(series))
	for i := range rows {
		rows[i] = model.SignalRow{
			Fast:   fast[i],
			Slow:   slow[i],
			RSI:    rsi[i],
			Cross:  crosses[i],
			Signal: Classify(crosses[i], rsi[i], p),
		}
	}
	return rows, nil
}

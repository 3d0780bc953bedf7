package strategy

import (
	"fmt"

	"TrendRadar/internal/calculator"
)

// ErrInvalidParameter is returned for non-positive windows, periods or lookbacks.
var ErrInvalidParameter = calculator.ErrInvalidParameter

// Params holds the tunable policy of the signal engine.
type Params struct {
	FastWindow int `yaml:"fast_window"`
	SlowWindow int `yaml:"slow_window"`
	RSIPeriod  int `yaml:"rsi_period"`

	// A cross-up only becomes BUY below BuyRSI; RSI above SellRSI forces SELL.
	BuyRSI  float64 `yaml:"buy_rsi"`
	SellRSI float64 `yaml:"sell_rsi"`

	// Score = ReturnWeight*ret(ReturnLookback) + MomentumWeight*ret(MomentumLookback)
	//         - OverheatPenalty*[RSI > OverheatRSI]
	ReturnLookback   int     `yaml:"return_lookback"`
	MomentumLookback int     `yaml:"momentum_lookback"`
	ReturnWeight     float64 `yaml:"return_weight"`
	MomentumWeight   float64 `yaml:"momentum_weight"`
	OverheatRSI      float64 `yaml:"overheat_rsi"`
	OverheatPenalty  float64 `yaml:"overheat_penalty"`
}

// DefaultParams returns SMA 10/30, RSI 14 and the 100/50/10 score weights.
func DefaultParams() Params {
	return Params{
		FastWindow:       10,
		SlowWindow:       30,
		RSIPeriod:        14,
		BuyRSI:           65,
		SellRSI:          70,
		ReturnLookback:   20,
		MomentumLookback: 5,
		ReturnWeight:     100,
		MomentumWeight:   50,
		OverheatRSI:      70,
		OverheatPenalty:  10,
	}
}

// Validate rejects non-positive windows, periods and lookbacks. Values are never clamped.
func (p Params) Validate() error {
	checks := []struct {
		name string
		v    int
	}{
		{"fast_window", p.FastWindow},
		{"slow_window", p.SlowWindow},
		{"rsi_period", p.RSIPeriod},
		{"return_lookback", p.ReturnLookback},
		{"momentum_lookback", p.MomentumLookback},
	}
	for _, c := range checks {
		if c.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidParameter, c.name, c.v)
		}
	}
	return nil
}

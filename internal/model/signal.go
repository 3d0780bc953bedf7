package model

// Crossover is the relative-order change of a fast/slow moving-average pair on one bar.
type Crossover int

const (
	CrossNone Crossover = 0
	CrossUp   Crossover = 1
	CrossDown Crossover = -1
)

func (c Crossover) String() string {
	switch c {
	case CrossUp:
		return "UP"
	case CrossDown:
		return "DOWN"
	default:
		return "NONE"
	}
}

// Signal is the three-state trend verdict for a bar.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// SignalRow holds the features derived for one bar.
type SignalRow struct {
	Fast   Float
	Slow   Float
	RSI    Float
	Cross  Crossover
	Signal Signal
}

// RankedResult is the latest-bar verdict of one instrument.
type RankedResult struct {
	Market string
	Close  float64
	RSI    Float
	Cross  Crossover
	Signal Signal
	Score  float64
}

// Skipped records an instrument omitted from a ranking and why.
type Skipped struct {
	Market string
	Reason string
}

package strategy

import (
	"TrendRadar/internal/calculator"
	"TrendRadar/internal/model"
)

// Score blends the medium-term return, short-term momentum and an overbought penalty of the
// latest bar into one ranking scalar. It only looks at this instrument's own history.
func Score(rows []model.SignalRow, closes []float64, p Params) float64 {
	ret := calculator.Return(closes, p.ReturnLookback)
	mom := calculator.Return(closes, p.MomentumLookback)

	overheat := 0.0
	if len(rows) > 0 && rows[len(rows)-1].RSI.Above(p.OverheatRSI) {
		overheat = 1
	}
	return p.ReturnWeight*ret + p.MomentumWeight*mom - p.OverheatPenalty*overheat
}

// Evaluate runs the full engine over a series and returns the latest-bar verdict.
func Evaluate(market string, series model.CandleSeries, p Params) (*model.RankedResult, error) {
	rows, err := ComputeIndicators(series, p)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.ErrMalformedBatch
	}
	last := rows[len(rows)-1]
	return &model.RankedResult{
		Market: market,
		Close:  series.Last().Close,
		RSI:    last.RSI,
		Cross:  last.Cross,
		Signal: last.Signal,
		Score:  Score(rows, series.Closes(), p),
	}, nil
}

package calculator

// Return computes closes[last]/closes[last-lookback] - 1.
// It returns 0 when fewer than lookback+1 closes exist or lookback is not positive.
func Return(closes []float64, lookback int) float64 {
	n := len(closes)
	if lookback <= 0 || n < lookback+1 {
		return 0
	}
	base := closes[n-1-lookback]
	if base == 0 {
		return 0
	}
	return closes[n-1]/base - 1
}

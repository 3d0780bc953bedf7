package calculator

import (
	"math/rand"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendRadar/internal/model"
)

func values(s model.IndicatorSeries) []any {
	out := make([]any, len(s))
	for i, v := range s {
		if v.Valid {
			out[i] = v.Value
		}
	}
	return out
}

func TestSMA_Window3(t *testing.T) {
	got, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, nil, 2.0, 3.0, 4.0}, values(got))
}

func TestSMA_MatchesTalib(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	closes := make([]float64, 200)
	p := 100.0
	for i := range closes {
		p *= 1 + (rng.Float64()-0.5)*0.02
		closes[i] = p
	}
	for _, window := range []int{2, 10, 30} {
		got, err := SMA(closes, window)
		require.NoError(t, err)
		want := talib.Sma(closes, window)
		for i := range closes {
			if i < window-1 {
				require.False(t, got[i].Valid, "window %d index %d", window, i)
				continue
			}
			require.True(t, got[i].Valid)
			require.InDelta(t, want[i], got[i].Value, 1e-9, "window %d index %d", window, i)
		}
	}
}

func TestSMA_ShortInput(t *testing.T) {
	for _, closes := range [][]float64{nil, {}, {42}} {
		got, err := SMA(closes, 1)
		require.NoError(t, err)
		require.Len(t, got, len(closes))
		for _, v := range got {
			assert.False(t, v.Valid)
		}
	}

	got, err := SMA([]float64{1, 2}, 5)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, nil}, values(got))
}

func TestIndicators_InvalidParameter(t *testing.T) {
	for _, n := range []int{0, -3} {
		_, err := SMA([]float64{1, 2, 3}, n)
		require.ErrorIs(t, err, ErrInvalidParameter)
		_, err = RSI([]float64{1, 2, 3}, n)
		require.ErrorIs(t, err, ErrInvalidParameter)
		// Rejected even when the input is too short to compute anything.
		_, err = SMA(nil, n)
		require.ErrorIs(t, err, ErrInvalidParameter)
	}
}

func TestRSI_HandComputed(t *testing.T) {
	got, err := RSI([]float64{1, 2, 1}, 2)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, v := range got {
		require.True(t, v.Valid)
	}
	assert.InDelta(t, 0, got[0].Value, 1e-9)
	assert.InDelta(t, 100, got[1].Value, 1e-6)
	assert.InDelta(t, 100-100/1.5, got[2].Value, 1e-9)
}

func TestRSI_Monotonic(t *testing.T) {
	up := make([]float64, 60)
	down := make([]float64, 60)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 200 - float64(i)
	}

	rsiUp, err := RSI(up, 14)
	require.NoError(t, err)
	for i := 1; i < len(rsiUp); i++ {
		assert.InDelta(t, 100, rsiUp[i].Value, 1e-6, "index %d", i)
	}

	rsiDown, err := RSI(down, 14)
	require.NoError(t, err)
	for i := range rsiDown {
		assert.InDelta(t, 0, rsiDown[i].Value, 1e-9, "index %d", i)
	}
}

func TestRSI_Bounded(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 50 + rng.Float64()*10
	}
	got, err := RSI(closes, 14)
	require.NoError(t, err)
	for i, v := range got {
		require.True(t, v.Valid)
		require.GreaterOrEqual(t, v.Value, 0.0, "index %d", i)
		require.LessOrEqual(t, v.Value, 100.0, "index %d", i)
	}
}

func TestRSI_ShortInput(t *testing.T) {
	got, err := RSI([]float64{10}, 14)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Valid)
}

func series(vs ...float64) model.IndicatorSeries {
	out := make(model.IndicatorSeries, len(vs))
	for i, v := range vs {
		out[i] = model.Some(v)
	}
	return out
}

func TestCrossovers(t *testing.T) {
	tests := []struct {
		name string
		fast model.IndicatorSeries
		slow model.IndicatorSeries
		want []model.Crossover
	}{
		{
			name: "cross up",
			fast: series(1, 3),
			slow: series(2, 2),
			want: []model.Crossover{model.CrossNone, model.CrossUp},
		},
		{
			name: "cross down",
			fast: series(3, 1),
			slow: series(2, 2),
			want: []model.Crossover{model.CrossNone, model.CrossDown},
		},
		{
			name: "touch then separate up",
			fast: series(2, 2, 3),
			slow: series(2, 2, 2),
			want: []model.Crossover{model.CrossNone, model.CrossNone, model.CrossUp},
		},
		{
			name: "touch then separate down",
			fast: series(2, 1),
			slow: series(2, 2),
			want: []model.Crossover{model.CrossNone, model.CrossDown},
		},
		{
			name: "stay above",
			fast: series(3, 4),
			slow: series(2, 2),
			want: []model.Crossover{model.CrossNone, model.CrossNone},
		},
		{
			name: "undefined operand",
			fast: model.IndicatorSeries{model.None(), model.Some(3), model.Some(1)},
			slow: series(2, 2, 2),
			want: []model.Crossover{model.CrossNone, model.CrossNone, model.CrossDown},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Crossovers(tt.fast, tt.slow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCrossovers_LengthMismatch(t *testing.T) {
	_, err := Crossovers(series(1, 2), series(1))
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestCrossovers_MutuallyExclusive(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	closes := make([]float64, 500)
	for i := range closes {
		// Coarse prices produce plenty of equal averages.
		closes[i] = float64(rng.Intn(5))
	}
	fast, err := SMA(closes, 2)
	require.NoError(t, err)
	slow, err := SMA(closes, 4)
	require.NoError(t, err)
	got, err := Crossovers(fast, slow)
	require.NoError(t, err)

	for i := 1; i < len(got); i++ {
		up := crossAt(fast[i-1], slow[i-1], fast[i], slow[i]) == model.CrossUp
		f0, s0, f1, s1 := fast[i-1], slow[i-1], fast[i], slow[i]
		if !(f0.Valid && s0.Valid && f1.Valid && s1.Valid) {
			require.Equal(t, model.CrossNone, got[i])
			continue
		}
		isUp := f0.Value <= s0.Value && f1.Value > s1.Value
		isDown := f0.Value >= s0.Value && f1.Value < s1.Value
		require.False(t, isUp && isDown, "index %d flagged both ways", i)
		require.Equal(t, isUp, up)
	}
}

func TestReturn(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 110}
	assert.InDelta(t, 0.1, Return(closes, 5), 1e-12)
	assert.Zero(t, Return(closes, 6))
	assert.Zero(t, Return(closes, 0))
	assert.Zero(t, Return(nil, 5))
	assert.InDelta(t, 110.0/104-1, Return(closes, 1), 1e-12)
}

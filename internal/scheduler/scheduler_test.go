package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendRadar/internal/collector"
	"TrendRadar/internal/model"
	"TrendRadar/internal/notifier"
	"TrendRadar/internal/strategy"
)

func newTestScheduler(t *testing.T, tn *notifier.TelegramNotifier) *Scheduler {
	t.Helper()
	fetcher := &collector.MockFetcher{
		Markets: []string{"KRW-AAA", "KRW-BBB", "KRW-CCC", "KRW-DDD", "BTC-XYZ"},
		Bars:    60,
		Batches: map[string]model.RawBatch{"KRW-DDD": {}},
		Errors:  map[string]error{"KRW-CCC": errors.New("HTTP 500")},
	}
	col := collector.NewCollector(fetcher, nil, "KRW-", 15, 200, 0, 0)
	return NewScheduler(context.Background(), col, tn, nil, strategy.DefaultParams(), 2, 5)
}

func TestScan(t *testing.T) {
	s := newTestScheduler(t, nil)
	require.Nil(t, s.Last())

	rep, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, rep.RunID)

	r := rep.Ranking
	require.Len(t, r.Results, 2)
	markets := []string{r.Results[0].Market, r.Results[1].Market}
	assert.ElementsMatch(t, []string{"KRW-AAA", "KRW-BBB"}, markets)
	assert.GreaterOrEqual(t, r.Results[0].Score, r.Results[1].Score)

	require.Len(t, r.Skipped, 2)
	assert.Equal(t, "KRW-CCC", r.Skipped[0].Market)
	assert.Contains(t, r.Skipped[0].Reason, "HTTP 500")
	assert.Equal(t, "KRW-DDD", r.Skipped[1].Market)
	assert.Contains(t, r.Skipped[1].Reason, "malformed candle batch")

	assert.Same(t, rep, s.Last())

	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.ScansTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.Metrics.InstrumentsRanked))
	// Each omitted instrument is counted under exactly one reason.
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.InstrumentsSkip))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.FetchFailures))
	assert.Equal(t, r.Results[0].Score, testutil.ToFloat64(s.Metrics.TopScore))
}

func TestScan_InvalidParams(t *testing.T) {
	s := newTestScheduler(t, nil)
	s.Params.SlowWindow = 0

	_, err := s.Scan(context.Background())
	require.ErrorIs(t, err, strategy.ErrInvalidParameter)
	assert.Nil(t, s.Last())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.ScansTotal.WithLabelValues("error")))
}

func TestScan_Deterministic(t *testing.T) {
	a, err := newTestScheduler(t, nil).Scan(context.Background())
	require.NoError(t, err)
	b, err := newTestScheduler(t, nil).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Ranking, b.Ranking)
}

func TestRegister(t *testing.T) {
	s := newTestScheduler(t, nil)
	require.NoError(t, s.Register("0 */15 * * * *"))
	require.Error(t, s.Register("not a cron spec"))
}

func TestHandleCommand(t *testing.T) {
	s := newTestScheduler(t, nil)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/top"), "No scan has completed yet")
	assert.Contains(t, s.HandleCommand(ctx, "/buy"), "No scan has completed yet")

	reply := s.HandleCommand(ctx, "/scan")
	assert.Contains(t, reply, "ranked 2, skipped 2")
	assert.Contains(t, reply, "KRW-CCC")

	assert.Contains(t, s.HandleCommand(ctx, "/top"), "ranked 2, skipped 2")
	assert.Contains(t, s.HandleCommand(ctx, "/buy"), "BUY signals")
	assert.Contains(t, s.HandleCommand(ctx, "/help"), "/scan")
}

func TestRunScanNow_Notifies(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		sent = append(sent, body["text"])
		mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := notifier.NewTelegramNotifier("token", "42", "")
	tn.APIBase = srv.URL
	s := newTestScheduler(t, tn)
	s.RunScanNow()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, sent)
	assert.Contains(t, sent[0], "TrendRadar scan")
	assert.NotNil(t, s.Last())
}

package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the scanner.
type Metrics struct {
	Registry *prometheus.Registry

	ScansTotal        *prometheus.CounterVec // labels: status=ok|error
	InstrumentsRanked prometheus.Counter
	InstrumentsSkip   prometheus.Counter
	FetchFailures     prometheus.Counter
	CacheFallbacks    prometheus.Counter
	ScanDuration      prometheus.Histogram
	TopScore          prometheus.Gauge
	BuySignals        prometheus.Gauge
}

// NewMetrics creates the metrics on their own registry so several instances can coexist.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendradar_scans_total",
			Help: "Scans run, by outcome",
		}, []string{"status"}),
		InstrumentsRanked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendradar_instruments_ranked_total",
			Help: "Instruments that produced a ranked result",
		}),
		InstrumentsSkip: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendradar_instruments_skipped_total",
			Help: "Instruments omitted because their candle batch was malformed",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendradar_fetch_failures_total",
			Help: "Instruments omitted because no candle batch could be fetched",
		}),
		CacheFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendradar_cache_fallbacks_total",
			Help: "Instruments served from the candle cache after a failed fetch",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trendradar_scan_duration_seconds",
			Help:    "Wall time of a full collect and rank pass",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
		TopScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trendradar_top_score",
			Help: "Score of the best ranked instrument in the last scan",
		}),
		BuySignals: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trendradar_buy_signals",
			Help: "Instruments with a BUY signal in the last scan",
		}),
	}
	m.Registry.MustRegister(
		m.ScansTotal,
		m.InstrumentsRanked,
		m.InstrumentsSkip,
		m.FetchFailures,
		m.CacheFallbacks,
		m.ScanDuration,
		m.TopScore,
		m.BuySignals,
	)
	return m
}

// Handler returns the /metrics handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[INFO] metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"TrendRadar/internal/collector"
	"TrendRadar/internal/metrics"
	"TrendRadar/internal/model"
	"TrendRadar/internal/notifier"
	"TrendRadar/internal/ranking"
	"TrendRadar/internal/strategy"
)

// Report is the outcome of one collect-and-rank pass.
type Report struct {
	RunID   string
	At      time.Time
	Ranking *ranking.Ranking
	// Cached lists instruments analysed from cached candles.
	Cached []string
}

// Scheduler manages the periodic scan task.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  *notifier.TelegramNotifier
	Metrics   *metrics.Metrics
	Params    strategy.Params
	Workers   int
	Top       int
	Ctx       context.Context

	scanMu sync.Mutex // one scan at a time
	mu     sync.RWMutex
	last   *Report
}

// NewScheduler creates a new Scheduler. Notifier and metrics may be nil.
func NewScheduler(ctx context.Context, col *collector.Collector, tn *notifier.TelegramNotifier, m *metrics.Metrics, p strategy.Params, workers, top int) *Scheduler {
	if m == nil {
		m = metrics.NewMetrics()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  tn,
		Metrics:   m,
		Params:    p,
		Workers:   workers,
		Top:       top,
		Ctx:       ctx,
	}
}

// Register registers the scan task on the given cron spec (with seconds).
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the scan task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

// Last returns the most recent successful scan, or nil.
func (s *Scheduler) Last() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Scan collects candles for the selected markets and ranks them.
func (s *Scheduler) Scan(ctx context.Context) (*Report, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	log.Printf("[INFO] scan %s started (fetcher=%s)", runID, s.Collector.Fetcher.Name())

	col, err := s.Collector.Collect(ctx)
	if err != nil {
		s.Metrics.ScansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("collect: %w", err)
	}
	r, err := ranking.Rank(col.Batches, s.Params, ranking.WithWorkers(s.Workers))
	if err != nil {
		s.Metrics.ScansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("rank: %w", err)
	}
	s.observe(r, col, time.Since(start))
	// Fetch failures are omitted like malformed batches; keep them visible in the report.
	r.Skipped = mergeSkipped(r.Skipped, col.Failed)
	rep := &Report{RunID: runID, At: start, Ranking: r, Cached: col.Cached}

	s.mu.Lock()
	s.last = rep
	s.mu.Unlock()

	log.Printf("[INFO] scan %s done in %s: ranked %d, skipped %d, buy %d",
		runID, time.Since(start).Round(time.Millisecond), len(r.Results), len(r.Skipped), len(r.BuySignals()))
	return rep, nil
}

// observe records one scan before fetch failures are merged into r.Skipped, so each omitted
// instrument is counted once: malformed ones as skipped, unfetched ones as fetch failures.
func (s *Scheduler) observe(r *ranking.Ranking, col *collector.Collection, d time.Duration) {
	s.Metrics.ScansTotal.WithLabelValues("ok").Inc()
	s.Metrics.ScanDuration.Observe(d.Seconds())
	s.Metrics.InstrumentsRanked.Add(float64(len(r.Results)))
	s.Metrics.InstrumentsSkip.Add(float64(len(r.Skipped)))
	s.Metrics.FetchFailures.Add(float64(len(col.Failed)))
	s.Metrics.CacheFallbacks.Add(float64(len(col.Cached)))
	s.Metrics.BuySignals.Set(float64(len(r.BuySignals())))
	if len(r.Results) > 0 {
		s.Metrics.TopScore.Set(r.Results[0].Score)
	}
}

func mergeSkipped(a, b []model.Skipped) []model.Skipped {
	out := make([]model.Skipped, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	ranking.SortSkipped(out)
	return out
}

func (s *Scheduler) scanTask() {
	rep, err := s.Scan(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] scan: %v", err)
		s.trySend(fmt.Sprintf("❌ scan failed: %v", err))
		return
	}
	s.trySend(notifier.FormatRanking(rep.RunID, rep.At, rep.Ranking, s.Top))
	if len(rep.Ranking.BuySignals()) > 0 {
		s.trySend(notifier.FormatBuySignals(rep.Ranking))
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/scan":
		rep, err := s.Scan(ctx)
		if err != nil {
			return fmt.Sprintf("❌ scan failed: %v", err)
		}
		return notifier.FormatRanking(rep.RunID, rep.At, rep.Ranking, s.Top)
	case "/top":
		rep := s.Last()
		if rep == nil {
			return "No scan has completed yet. Send /scan."
		}
		return notifier.FormatRanking(rep.RunID, rep.At, rep.Ranking, s.Top)
	case "/buy":
		rep := s.Last()
		if rep == nil {
			return "No scan has completed yet. Send /scan."
		}
		return notifier.FormatBuySignals(rep.Ranking)
	default:
		return "Commands:\n• /scan run a scan now\n• /top latest ranking\n• /buy latest BUY signals"
	}
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

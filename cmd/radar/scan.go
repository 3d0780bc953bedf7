package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TrendRadar/internal/notifier"
	"TrendRadar/internal/scheduler"
)

var scanTop int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and print the ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		top := cfg.Report.Top
		if scanTop > 0 {
			top = scanTop
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cache := newCache(cfg)
		defer cache.Close()

		sched := scheduler.NewScheduler(ctx, newCollector(cfg, cache), nil, nil, cfg.Analysis, cfg.Workers, top)
		rep, err := sched.Scan(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run %s at %s\n", rep.RunID, rep.At.Format("2006-01-02 15:04:05"))
		fmt.Fprintln(out, notifier.RenderTable("Top by score", rep.Ranking.Top(top)))
		fmt.Fprintln(out, notifier.RenderTable("BUY signals", rep.Ranking.BuySignals()))
		for _, s := range rep.Ranking.Skipped {
			fmt.Fprintf(os.Stderr, "skipped %s: %s\n", s.Market, s.Reason)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().IntVarP(&scanTop, "top", "n", 0, "rows to print (default report.top)")
}
